// Command sandbox serves an in-memory aqaar backend with demo data, for example
// to try the owner console without touching production.
//
// use AQAAR_API_URL="http://localhost:3000" for the console
package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/relabs-tech/aqaar/core/config"
	"github.com/relabs-tech/aqaar/core/logger"
	"github.com/relabs-tech/aqaar/sandbox"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.InitLogger(logger.ParseLevel(cfg.LogLevel), cfg.LogFile); err != nil {
		panic(err)
	}
	rlog := logger.Default()

	router := mux.NewRouter()
	sb := sandbox.New(&sandbox.Builder{
		Router: router,
		Secret: []byte(cfg.SandboxSecret),
	})

	rlog.Infof("owner account %s / %s", sandbox.OwnerEmail, sandbox.OwnerPassword)
	rlog.Infof("listen on %s", cfg.SandboxAddr)
	if err := http.ListenAndServe(cfg.SandboxAddr, sb.Handler()); err != nil {
		rlog.WithError(err).Fatalln("sandbox stopped")
	}
}

// Command ownerdesk is the owner console of the aqaar property platform.
//
// It reads its configuration from the environment and an optional .env file, see
// package config. Sign in with
//
//	ownerdesk login --email owner@aqaar.sa --password ...
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/relabs-tech/aqaar/core/config"
	"github.com/relabs-tech/aqaar/core/logger"
	"github.com/relabs-tech/aqaar/internal/commands"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.InitLogger(logger.ParseLevel(cfg.LogLevel), cfg.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app, err := commands.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	err = app.Execute(context.Background(), os.Args[1:])
	if cerr := app.Close(); cerr != nil {
		logger.Default().WithError(cerr).Errorln("cannot flush audit trail")
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

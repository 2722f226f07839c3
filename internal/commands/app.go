package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gorilla/mux"

	"github.com/relabs-tech/aqaar/api"
	"github.com/relabs-tech/aqaar/audit"
	"github.com/relabs-tech/aqaar/core/access"
	"github.com/relabs-tech/aqaar/core/client"
	"github.com/relabs-tech/aqaar/core/config"
	"github.com/relabs-tech/aqaar/core/i18n"
	"github.com/relabs-tech/aqaar/core/kss"
	"github.com/relabs-tech/aqaar/core/notify"
	"github.com/relabs-tech/aqaar/core/query"
	"github.com/relabs-tech/aqaar/dashboard"
)

// App wires the owner console together
type App struct {
	Out io.Writer
	Err io.Writer

	Languages i18n.Preference
	Store     *access.Store
	Guard     access.Guard
	API       *api.API
	Geocoder  *api.Geocoder
	Cache     *query.Cache
	Dashboard *dashboard.Dashboard
	Images    kss.ImageSource
	Audit     audit.Sink
}

// printer writes notices to the terminal
type printer struct {
	w io.Writer
}

func (p printer) Notify(ctx context.Context, notice notify.Notice) {
	mark := "*"
	switch notice.Level {
	case notify.Success:
		mark = "✓"
	case notify.Error:
		mark = "✗"
	}
	fmt.Fprintf(p.w, "%s %s\n", mark, notice.Message)
}

// wire builds the app around a client without token or language source
func wire(kv kss.Driver, base client.Client, geocoding client.Client, sink audit.Sink, out, errOut io.Writer) *App {
	app := &App{
		Out:       out,
		Err:       errOut,
		Languages: i18n.Preference{Store: kv},
		Audit:     sink,
	}
	notifier := notify.Multi{notify.Log{}, printer{w: errOut}}
	app.Store = access.NewStore(kv, notifier, app.Languages)
	app.Guard = access.Guard{Store: app.Store}
	app.API = api.New(base.WithTokenSource(app.Store).WithLanguageSource(app.Languages))
	app.Geocoder = api.NewGeocoder(geocoding.WithLanguageSource(app.Languages))
	app.Cache = query.New(notifier, app.Languages)
	app.Cache.Observe(sink)
	app.Dashboard = dashboard.New(app.Cache, app.API)
	return app
}

// New creates the app from the configuration
func New(cfg *config.Config) (*App, error) {
	kssConfig := kss.Configuration{DriverType: kss.DriverType(cfg.StateDriver)}
	s3Config := &kss.S3Configuration{
		AWSBucketName: cfg.S3Bucket,
		AWSRegion:     cfg.S3Region,
		AccessID:      cfg.S3AccessID,
		AccessKey:     cfg.S3AccessKey,
		KeyPrefix:     cfg.S3Prefix,
	}
	switch kssConfig.DriverType {
	case kss.DriverTypeLocal:
		kssConfig.LocalConfiguration = &kss.LocalConfiguration{BasePath: cfg.StateDir}
	case kss.DriverTypeAWSS3:
		kssConfig.S3Configuration = s3Config
	}
	kv, err := kss.New(kssConfig)
	if err != nil {
		return nil, err
	}

	var images kss.ImageSource
	if cfg.S3Bucket != "" {
		if images.S3, err = kss.NewS3(*s3Config); err != nil {
			return nil, err
		}
	}

	sink, err := audit.New(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		return nil, err
	}

	base := client.NewWithURL(cfg.APIURL).WithTimeout(cfg.HTTPTimeout)
	app := wire(kv, base, client.NewWithURL(api.NominatimURL).WithTimeout(cfg.HTTPTimeout), sink, os.Stdout, os.Stderr)
	app.Images = images
	return app, nil
}

// NewInProcess creates an app talking to the backend served by router, with its
// state in kv. Reverse geocoding goes to geocoder.
func NewInProcess(router *mux.Router, geocoder *mux.Router, kv kss.Driver, out, errOut io.Writer) *App {
	return wire(kv, client.NewWithRouter(router), client.NewWithRouter(geocoder), audit.LogPublisher{}, out, errOut)
}

// Close flushes the audit trail
func (a *App) Close() error {
	if a.Audit == nil {
		return nil
	}
	return a.Audit.Close()
}

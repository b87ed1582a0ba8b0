package handlers

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/graphops/geo-service/internal/config"
	"github.com/graphops/geo-service/internal/mid"
	"github.com/graphops/geo-service/internal/platform/geonode"
	"github.com/graphops/geo-service/internal/platform/metrics"
	"github.com/graphops/geo-service/internal/platform/web"
)

const (
	statusPath = "/status"
	costPath   = "/cost"
)

// Handlers builds the request handler of the public API.
func Handlers(cfg *config.GeoService, shutdown chan os.Signal, logger zerolog.Logger, metrics metrics.Metrics, adapter *geonode.Adapter, attester geonode.Attester) fasthttp.RequestHandler {

	// Construct the web.App which holds all routes as well as common Middleware.
	app := web.NewApp(shutdown, logger, mid.Logger(logger), mid.Metrics(metrics), mid.Errors(logger), mid.Panics(logger))

	if attester == nil {
		attester = geonode.NoAttester{}
	}

	s := Handler{
		adapter:  adapter,
		attester: attester,
		logger:   logger,
	}

	app.Handle(fasthttp.MethodPost, queryPath(cfg.URLNamespace), s.Query)
	app.Handle(fasthttp.MethodPost, statusPath, s.Status)
	app.Handle(fasthttp.MethodPost, costPath, s.Cost)

	return app.MainHandler
}

func queryPath(namespace string) string {
	var builder strings.Builder
	builder.WriteString("/")
	if ns := strings.Trim(namespace, "/"); ns != "" {
		builder.WriteString(ns)
		builder.WriteString("/")
	}
	builder.WriteString("id/{")
	builder.WriteString(deploymentParam)
	builder.WriteString("}")

	return builder.String()
}

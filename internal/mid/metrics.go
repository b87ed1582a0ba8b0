package mid

import (
	"time"

	"github.com/valyala/fasthttp"

	"github.com/graphops/geo-service/internal/platform/metrics"
	"github.com/graphops/geo-service/internal/platform/web"
)

const (
	deploymentParam = "deployment"

	// invalidDeployment labels the requests whose deployment ID did not parse.
	invalidDeployment = "invalid"
)

// Metrics records the duration and the final status of every request. It
// sits outside of Errors so the status code is the one sent to the client.
func Metrics(m metrics.Metrics) web.Middleware {

	// This is the actual middleware function to be executed.
	mw := func(before web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx *fasthttp.RequestCtx) error {
			start := time.Now()

			err := before(ctx)

			deployment := metricsLabel(ctx)

			if kind, ok := ctx.UserValue(web.ErrorKind).(string); ok {
				m.IncErrorTypeCounter(kind, deployment)
			}
			m.IncHTTPRequestStat(start, deployment, ctx.Response.StatusCode())

			return err
		}

		return h
	}

	return mw
}

// metricsLabel returns the parsed deployment ID set by the handler. Requests
// to other routes are labelled with their path.
func metricsLabel(ctx *fasthttp.RequestCtx) string {
	if id, ok := ctx.UserValue(web.DeploymentID).(string); ok && id != "" {
		return id
	}
	if ctx.UserValue(deploymentParam) != nil {
		return invalidDeployment
	}
	return string(ctx.Path())
}

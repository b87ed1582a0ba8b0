package mid

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/graphops/geo-service/internal/platform/web"
)

// Logger writes some information about the request to the logs in the
// format: TraceID : (200) GET /foo -> IP ADDR (latency)
func Logger(logger zerolog.Logger) web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(before web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx *fasthttp.RequestCtx) error {
			start := time.Now()

			logger.Debug().
				Interface("request_id", ctx.UserValue(web.RequestID)).
				Bytes("method", ctx.Request.Header.Method()).
				Bytes("path", ctx.Path()).
				Bytes("uri", ctx.Request.URI().RequestURI()).
				Str("client_address", ctx.RemoteAddr().String()).
				Msg("Received request from client")

			err := before(ctx)

			logger.Debug().
				Interface("request_id", ctx.UserValue(web.RequestID)).
				Int("status_code", ctx.Response.StatusCode()).
				Bytes("method", ctx.Request.Header.Method()).
				Bytes("path", ctx.Path()).
				Bytes("uri", ctx.Request.URI().RequestURI()).
				Str("client_address", ctx.RemoteAddr().String()).
				Dur("processing_time", time.Since(start)).
				Msg("Sending response to client")

			// log all information about the request
			web.LogRequestResponseAtTraceLevel(ctx, logger)

			// Return the error, so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}

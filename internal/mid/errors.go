package mid

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/graphops/geo-service/internal/platform/web"
)

// Errors handles errors coming out of the call chain. It detects normal
// application errors which are used to respond to the client in a uniform way.
// Unexpected errors (status >= 500) are logged.
func Errors(logger zerolog.Logger) web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(before web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx *fasthttp.RequestCtx) error {

			// Run the handler chain and catch any propagated error.
			if err := before(ctx); err != nil {

				status := fasthttp.StatusInternalServerError
				message := fasthttp.StatusMessage(status)

				var webErr *web.Error
				if errors.As(err, &webErr) {
					status = webErr.Status
					message = webErr.Error()
				}

				event := logger.Info()
				if status >= fasthttp.StatusInternalServerError {
					event = logger.Error()
				}
				event.
					Err(err).
					Interface("request_id", ctx.UserValue(web.RequestID)).
					Int("status_code", status).
					Bytes("path", ctx.Path()).
					Msg("request failed")

				// Respond to the error.
				web.RespondError(ctx, status, message)

				// If we receive the shutdown err we need to return it
				// back to the base handler to shutdown the service.
				if ok := web.IsShutdown(err); ok {
					return err
				}
			}

			// The error has been handled so we can stop propagating it.
			return nil
		}

		return h
	}

	return m
}

package web

import (
	"os"
	"runtime/debug"
	"syscall"

	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const (
	RequestID = "__geo_request_id"

	// ErrorKind is set by the handlers on failed requests and read by the
	// metrics middleware.
	ErrorKind = "__geo_error_kind"

	// DeploymentID holds the parsed deployment of a data query.
	DeploymentID = "__geo_deployment_id"
)

// A Handler is a type that handles an http request within our own little mini
// framework.
type Handler func(ctx *fasthttp.RequestCtx) error

// App is the entrypoint into our application and what configures our context
// object for each of our http handlers.
type App struct {
	Router   *router.Router
	Log      zerolog.Logger
	shutdown chan os.Signal
	mw       []Middleware
}

// NewApp creates an App value that handle a set of routes for the application.
func NewApp(shutdown chan os.Signal, logger zerolog.Logger, mw ...Middleware) *App {

	app := App{
		Router:   router.New(),
		shutdown: shutdown,
		mw:       mw,
		Log:      logger,
	}

	app.Router.HandleMethodNotAllowed = true
	app.Router.NotFound = app.notFound
	app.Router.MethodNotAllowed = app.methodNotAllowed

	return &app
}

// Handle is our mechanism for mounting Handlers for a given HTTP verb and path
// pair, this makes for really easy, convenient routing.
func (a *App) Handle(method string, path string, handler Handler, mw ...Middleware) {

	// First wrap handler specific middleware around this handler.
	handler = WrapMiddleware(mw, handler)

	// Add the application's general middleware to the handler chain.
	handler = WrapMiddleware(a.mw, handler)

	// The function to execute for each request.
	h := func(ctx *fasthttp.RequestCtx) {
		if err := handler(ctx); err != nil {
			a.Log.Error().
				Err(err).
				Interface("request_id", ctx.UserValue(RequestID)).
				Bytes("path", ctx.Path()).
				Bytes("method", ctx.Request.Header.Method()).
				Msg("Error in the request handler")
			a.SignalShutdown()
		}
	}

	// Add this handler for the specified verb and route.
	a.Router.Handle(method, path, h)
}

// MainHandler adds the request ID and routes the request.
func (a *App) MainHandler(ctx *fasthttp.RequestCtx) {

	// handle panic
	defer func() {
		if r := recover(); r != nil {
			a.Log.Error().Msgf("panic: %v", r)

			// Log the Go stack trace for this panic'd goroutine.
			a.Log.Debug().Msgf("%s", debug.Stack())
			ctx.Error(fasthttp.StatusMessage(fasthttp.StatusInternalServerError), fasthttp.StatusInternalServerError)
		}
	}()

	// Add request ID
	ctx.SetUserValue(RequestID, uuid.NewString())

	a.Router.Handler(ctx)
}

func (a *App) notFound(ctx *fasthttp.RequestCtx) {
	a.Log.Info().
		Interface("request_id", ctx.UserValue(RequestID)).
		Bytes("host", ctx.Request.Header.Host()).
		Bytes("path", ctx.Path()).
		Bytes("method", ctx.Request.Header.Method()).
		Str("client_address", ctx.RemoteAddr().String()).
		Msg("Path not found")

	RespondError(ctx, fasthttp.StatusNotFound, fasthttp.StatusMessage(fasthttp.StatusNotFound))
}

func (a *App) methodNotAllowed(ctx *fasthttp.RequestCtx) {
	RespondError(ctx, fasthttp.StatusMethodNotAllowed, fasthttp.StatusMessage(fasthttp.StatusMethodNotAllowed))
}

// SignalShutdown is used to gracefully shutdown the app when an integrity
// issue is identified.
func (a *App) SignalShutdown() {
	select {
	case a.shutdown <- syscall.SIGTERM:
	default:
	}
}

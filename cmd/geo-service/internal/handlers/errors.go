package handlers

import (
	"errors"

	"github.com/valyala/fasthttp"

	"github.com/graphops/geo-service/internal/platform/geonode"
	"github.com/graphops/geo-service/internal/platform/proxy"
	"github.com/graphops/geo-service/internal/platform/query"
	"github.com/graphops/geo-service/internal/platform/web"
)

// error kinds reported in the metrics
const (
	kindInvalidQuery      = "invalid_query"
	kindUnsupportedFields = "unsupported_fields"
	kindInvalidDeployment = "invalid_deployment"
	kindForwarding        = "forwarding"
	kindStatusQuery       = "status_query"
	kindInternal          = "internal"
)

func classify(err error) (string, int) {
	var (
		invalidQuery      *query.InvalidQueryError
		unsupportedFields *query.UnsupportedFieldsError
		invalidDeployment *geonode.InvalidDeploymentError
		forwarding        *geonode.ForwardingError
		statusQuery       *geonode.StatusQueryError
	)

	switch {
	case errors.As(err, &invalidQuery):
		return kindInvalidQuery, fasthttp.StatusBadRequest
	case errors.As(err, &unsupportedFields):
		return kindUnsupportedFields, fasthttp.StatusBadRequest
	case errors.As(err, &invalidDeployment):
		return kindInvalidDeployment, fasthttp.StatusBadRequest
	case errors.As(err, &forwarding):
		return kindForwarding, fasthttp.StatusInternalServerError
	case errors.As(err, &statusQuery):
		return kindStatusQuery, fasthttp.StatusInternalServerError
	}

	return kindInternal, fasthttp.StatusInternalServerError
}

// requestError turns a processing error into the web error rendered by the
// Errors middleware and records its kind for the metrics. A closed geo node
// pool can not serve any further request, so it shuts the service down.
func requestError(ctx *fasthttp.RequestCtx, err error) error {
	kind, status := classify(err)
	ctx.SetUserValue(web.ErrorKind, kind)

	if errors.Is(err, proxy.ErrPoolClosed) {
		return web.NewShutdownError(err.Error())
	}

	return web.NewRequestError(err, status)
}

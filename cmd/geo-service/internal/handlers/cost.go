package handlers

import (
	"github.com/valyala/fasthttp"

	"github.com/graphops/geo-service/internal/platform/web"
)

var emptyCostModel = []byte("{}")

// Cost answers cost model requests. Geo queries are not priced.
func (h *Handler) Cost(ctx *fasthttp.RequestCtx) error {
	return web.RespondRaw(ctx, emptyCostModel, fasthttp.StatusOK)
}

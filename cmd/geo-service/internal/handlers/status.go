package handlers

import (
	"github.com/valyala/fasthttp"

	"github.com/graphops/geo-service/internal/platform/web"
)

// Status validates a status query and answers it with the geo node status.
// Errors reported by the geo node are a successful answer.
func (h *Handler) Status(ctx *fasthttp.RequestCtx) error {

	result, err := h.adapter.Status(ctx.Request.Body())
	if err != nil {
		return requestError(ctx, err)
	}

	return web.RespondRaw(ctx, result.Payload, fasthttp.StatusOK)
}

package handlers

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/graphops/geo-service/internal/platform/deployment"
	"github.com/graphops/geo-service/internal/platform/geonode"
	"github.com/graphops/geo-service/internal/platform/web"
)

const deploymentParam = "deployment"

type Handler struct {
	adapter  *geonode.Adapter
	attester geonode.Attester
	logger   zerolog.Logger
}

// Query forwards a data query of the deployment to the geo node and wraps
// the answer in the attested response envelope.
func (h *Handler) Query(ctx *fasthttp.RequestCtx) error {

	rawID, _ := ctx.UserValue(deploymentParam).(string)

	id, err := deployment.Parse(rawID)
	if err != nil {
		return requestError(ctx, &geonode.InvalidDeploymentError{Deployment: rawID, Err: err})
	}
	ctx.SetUserValue(web.DeploymentID, id.String())

	request, resp, err := h.adapter.ProcessRequest(id, ctx.Request.Body())
	if err != nil {
		return requestError(ctx, err)
	}

	var attestation []byte
	if resp.Attestable() {
		attestation, err = h.attester.Attest(request, resp)
		if err != nil {
			return requestError(ctx, errors.Wrap(err, "attestation"))
		}
	}

	body, err := resp.Finalize(attestation)
	if err != nil {
		return requestError(ctx, err)
	}

	h.logger.Debug().
		Interface("request_id", ctx.UserValue(web.RequestID)).
		Str("deployment", id.String()).
		Bool("attestable", resp.Attestable()).
		Msg("Query processed")

	return web.RespondRaw(ctx, body, fasthttp.StatusOK)
}

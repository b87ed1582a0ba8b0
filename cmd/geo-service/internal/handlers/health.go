package handlers

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/graphops/geo-service/internal/platform/proxy"
	"github.com/graphops/geo-service/internal/platform/web"
	"github.com/graphops/geo-service/internal/version"
)

const (
	livenessEndpoint  = "/v1/liveness"
	readinessEndpoint = "/v1/readiness"
)

type Health struct {
	Logger zerolog.Logger
	Pools  []proxy.Pool
}

func poolReady(pool proxy.Pool) bool {
	client, ip, err := pool.Get()
	if err != nil {
		return false
	}

	if client != nil {
		if err := pool.Put(ip, client); err != nil {
			return false
		}
	}

	return true
}

// Readiness checks if the connection pools of the geo node endpoints are
// ready to handle new requests.
func (h *Health) Readiness(ctx *fasthttp.RequestCtx) error {

	status := "ok"
	statusCode := fasthttp.StatusOK

	for _, pool := range h.Pools {
		if !poolReady(pool) {
			status = "not ready"
			statusCode = fasthttp.StatusInternalServerError
			break
		}
	}

	data := struct {
		Status string `json:"status"`
	}{
		Status: status,
	}

	return web.Respond(ctx, data, statusCode)
}

// Liveness returns simple status info if the service is alive. If the
// app is deployed to a Kubernetes cluster, it will also return pod, node, and
// namespace details via the Downward API. The Kubernetes environment variables
// need to be set within your Pod/Deployment manifest.
func (h *Health) Liveness(ctx *fasthttp.RequestCtx) error {
	host, err := os.Hostname()
	if err != nil {
		host = "unavailable"
	}

	data := struct {
		Status    string `json:"status,omitempty"`
		Build     string `json:"build,omitempty"`
		Host      string `json:"host,omitempty"`
		Pod       string `json:"pod,omitempty"`
		PodIP     string `json:"podIP,omitempty"`
		Node      string `json:"node,omitempty"`
		Namespace string `json:"namespace,omitempty"`
	}{
		Status:    "up",
		Build:     version.Version,
		Host:      host,
		Pod:       os.Getenv("KUBERNETES_PODNAME"),
		PodIP:     os.Getenv("KUBERNETES_NAMESPACE_POD_IP"),
		Node:      os.Getenv("KUBERNETES_NODENAME"),
		Namespace: os.Getenv("KUBERNETES_NAMESPACE"),
	}

	return web.Respond(ctx, data, fasthttp.StatusOK)
}

// Handler routes the requests of the health API.
func (h *Health) Handler(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case livenessEndpoint:
		if err := h.Liveness(ctx); err != nil {
			h.Logger.Error().Msgf("%s: liveness: %s", logPrefix, err.Error())
		}
	case readinessEndpoint:
		if err := h.Readiness(ctx); err != nil {
			h.Logger.Error().Msgf("%s: readiness: %s", logPrefix, err.Error())
		}
	default:
		ctx.Error("Unsupported path", fasthttp.StatusNotFound)
	}
}

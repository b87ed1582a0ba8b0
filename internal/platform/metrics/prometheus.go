package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const namespace = "geo"

type Options struct {
	EndpointName string
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PrometheusMetrics collects the request statistics of the service. When
// disabled every method is a no-op.
type PrometheusMetrics struct {
	enabled  bool
	registry *prometheus.Registry

	totalErrors         prometheus.Counter
	errorTypeCounter    *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var _ Metrics = (*PrometheusMetrics)(nil)

func NewPrometheusMetrics(enabled bool) *PrometheusMetrics {

	m := &PrometheusMetrics{
		enabled:  enabled,
		registry: prometheus.NewRegistry(),

		// Counter: Total number of errors
		totalErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "service_errors_total",
				Help:      "Total number of errors occurred in the geo service.",
			}),

		// Counter: Errors by types
		errorTypeCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "service_errors_by_type",
				Help:      "Total number of errors by type and deployment.",
			},
			[]string{"error_type", "deployment"},
		),

		// Counter: Total number of HTTP requests
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"deployment", "status_code"},
		),

		// Histogram: HTTP request duration
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .025, .05, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"deployment"},
		),
	}

	if enabled {
		m.registry.MustRegister(m.totalErrors, m.errorTypeCounter, m.httpRequestsTotal, m.httpRequestDuration)
	}

	return m
}

func (m *PrometheusMetrics) IncErrorTypeCounter(kind string, deployment string) {
	if !m.enabled {
		return
	}
	m.totalErrors.Inc()
	m.errorTypeCounter.WithLabelValues(kind, deployment).Inc()
}

func (m *PrometheusMetrics) IncHTTPRequestStat(start time.Time, deployment string, statusCode int) {
	if !m.enabled {
		return
	}
	m.httpRequestDuration.WithLabelValues(deployment).Observe(time.Since(start).Seconds())
	m.httpRequestsTotal.WithLabelValues(deployment, strconv.Itoa(statusCode)).Inc()
}

// Handler exposes the collected metrics in the Prometheus text format.
func (m *PrometheusMetrics) Handler() fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// StartService serves the metrics endpoint until the server fails.
func (m *PrometheusMetrics) StartService(logger zerolog.Logger, options *Options) error {

	endpoint := "/" + options.EndpointName
	metricsHandler := m.Handler()

	handler := func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Path()) != endpoint {
			ctx.Error("Unsupported path", fasthttp.StatusNotFound)
			return
		}
		metricsHandler(ctx)
	}

	server := fasthttp.Server{
		Handler:               handler,
		ReadTimeout:           options.ReadTimeout,
		WriteTimeout:          options.WriteTimeout,
		NoDefaultServerHeader: true,
	}

	logger.Info().Msgf("metrics: API listening on %s%s", options.Host, endpoint)
	return server.ListenAndServe(options.Host)
}

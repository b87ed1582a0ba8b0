package handlers

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ardanlabs/conf"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/errgroup"

	"github.com/graphops/geo-service/internal/config"
	"github.com/graphops/geo-service/internal/platform/geonode"
	"github.com/graphops/geo-service/internal/platform/metrics"
	"github.com/graphops/geo-service/internal/platform/proxy"
	"github.com/graphops/geo-service/internal/version"
)

const (
	logPrefix = "main"

	initialPoolCapacity = 100

	// names of the geo node endpoints in logs
	queryEndpoint  = "query"
	statusEndpoint = "status"
)

func Run(logger zerolog.Logger) error {

	// =========================================================================
	// Configuration

	var cfg config.GeoService
	cfg.Version.SVN = version.Version
	cfg.Version.Desc = version.ProjectName

	if err := conf.Parse(os.Args[1:], version.Namespace, &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage(version.Namespace, &cfg)
			if err != nil {
				return errors.Wrap(err, "generating config usage")
			}
			fmt.Println(usage)
			return nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString(version.Namespace, &cfg)
			if err != nil {
				return errors.Wrap(err, "generating config version")
			}
			fmt.Println(version)
			return nil
		}
		return errors.Wrap(err, "parsing config")
	}

	// the config file overrides the values from the environment
	if err := config.MergeFile(cfg.ConfigFile, &cfg); err != nil {
		return err
	}

	if err := config.Validate(&cfg); err != nil {
		return err
	}

	// =========================================================================
	// Init Logger

	logger = config.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	logger.Info().Msgf("%s : Started : Application initializing : version %q", logPrefix, version.Version)
	defer logger.Info().Msgf("%s: Completed", logPrefix)

	out, err := conf.String(&cfg)
	if err != nil {
		return errors.Wrap(err, "generating config for output")
	}
	logger.Info().Msgf("%s: Configuration Loaded :\n%v\n", logPrefix, out)

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Init DNS Resolver

	// default DNS resolver
	resolver := &net.Resolver{
		PreferGo:     true,
		StrictErrors: false,
	}

	// configuration of the custom DNS server
	if cfg.DNS.Nameserver.Host != "" {
		nameserver := net.JoinHostPort(cfg.DNS.Nameserver.Host, cfg.DNS.Nameserver.Port)

		resolver.Dial = func(ctx context.Context, network, address string) (net.Conn, error) {
			d := net.Dialer{
				Timeout: cfg.DNS.LookupTimeout,
			}
			return d.DialContext(ctx, cfg.DNS.Nameserver.Proto, nameserver)
		}
	}

	dnsCacheOptions := proxy.DNSCacheOptions{
		UseCache:      cfg.DNS.Cache,
		Logger:        logger,
		FetchTimeout:  cfg.DNS.FetchTimeout,
		LookupTimeout: cfg.DNS.LookupTimeout,
	}

	dnsResolver, err := proxy.NewDNSResolver(resolver, &dnsCacheOptions)
	if err != nil {
		return errors.Wrap(err, "DNS cache resolver init")
	}
	defer dnsResolver.Stop()

	// =========================================================================
	// Init Geo Node Pools

	queryPool, err := newPool(queryEndpoint, cfg.GeoNode.QueryBaseURL, &cfg, dnsResolver, logger)
	if err != nil {
		return errors.Wrap(err, "query pool init")
	}
	defer queryPool.Close()

	statusPool, err := newPool(statusEndpoint, cfg.GeoNode.StatusURL, &cfg, dnsResolver, logger)
	if err != nil {
		return errors.Wrap(err, "status pool init")
	}
	defer statusPool.Close()

	adapter := geonode.New(geonode.Options{
		QueryPool:        queryPool,
		StatusPool:       statusPool,
		QueryBaseURL:     cfg.GeoNode.QueryBaseURL,
		StatusURL:        cfg.GeoNode.StatusURL,
		Timeout:          cfg.GeoNode.Timeout,
		SubgraphSentinel: cfg.Subgraph.Sentinel,
		SubgraphID:       cfg.Subgraph.ID,
		Logger:           logger,
	})

	// =========================================================================
	// Init Metrics

	metricsController := metrics.NewPrometheusMetrics(cfg.Metrics.Enabled)

	if cfg.Metrics.Enabled {
		options := metrics.Options{
			EndpointName: cfg.Metrics.EndpointName,
			Host:         cfg.Metrics.Host,
			ReadTimeout:  cfg.Metrics.ReadTimeout,
			WriteTimeout: cfg.Metrics.WriteTimeout,
		}

		go func() {
			serverErrors <- errors.Wrap(metricsController.StartService(logger, &options), "metrics")
		}()
	}

	// =========================================================================
	// Init ZeroLogger

	zeroLogger := &config.ZerologAdapter{Logger: logger}

	// =========================================================================
	// Init Handlers

	requestHandlers := Handlers(&cfg, shutdown, logger, metricsController, adapter, geonode.NoAttester{})

	// =========================================================================
	// Start Health API Service

	healthData := Health{
		Logger: logger,
		Pools:  []proxy.Pool{queryPool, statusPool},
	}

	healthAPI := fasthttp.Server{
		Handler:               healthData.Handler,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		Logger:                zeroLogger,
		NoDefaultServerHeader: true,
	}

	// Start the service listening for requests.
	go func() {
		logger.Info().Msgf("%s: Health API listening on %s", logPrefix, cfg.HealthAPIHost)
		serverErrors <- healthAPI.ListenAndServe(cfg.HealthAPIHost)
	}()

	// =========================================================================
	// Start API Service

	logger.Info().Msgf("%s: Initializing API support", logPrefix)

	apiHost, err := url.ParseRequestURI(cfg.APIHost)
	if err != nil {
		return errors.Wrap(err, "parsing API Host URL")
	}

	api := fasthttp.Server{
		Handler:            requestHandlers,
		ReadTimeout:        cfg.ReadTimeout,
		WriteTimeout:       cfg.WriteTimeout,
		ReadBufferSize:     cfg.ReadBufferSize,
		WriteBufferSize:    cfg.WriteBufferSize,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		DisableKeepalive:   cfg.DisableKeepalive,
		MaxConnsPerIP:      cfg.MaxConnsPerIP,
		MaxRequestsPerConn: cfg.MaxRequestsPerConn,
		ErrorHandler: func(ctx *fasthttp.RequestCtx, err error) {
			logger.Error().Err(err).Msg("request processing error")

			ctx.Error(err.Error(), fasthttp.StatusBadRequest)
		},
		Logger:                zeroLogger,
		NoDefaultServerHeader: true,
	}

	// Start the service listening for requests.
	go func() {
		logger.Info().Msgf("%s: API listening on %s", logPrefix, cfg.APIHost)
		serverErrors <- api.ListenAndServe(apiHost.Host)
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return errors.Wrap(err, "server error")

	case sig := <-shutdown:
		logger.Info().Msgf("%s: %v: Start shutdown", logPrefix, sig)

		// Asking listeners to shutdown and shed load.
		var g errgroup.Group
		g.Go(api.Shutdown)
		g.Go(healthAPI.Shutdown)

		if err := g.Wait(); err != nil {
			return errors.Wrap(err, "could not stop server gracefully")
		}
		logger.Info().Msgf("%s: %v: Completed shutdown", logPrefix, sig)
	}

	return nil
}

// newPool resolves the host of one geo node endpoint and creates its client
// pool.
func newPool(endpoint string, rawURL string, cfg *config.GeoService, dnsResolver proxy.DNSCache, logger zerolog.Logger) (proxy.Pool, error) {

	serverURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing geo node URL")
	}

	if err := dnsResolver.Warm(context.Background(), endpoint, serverURL.Hostname()); err != nil {
		return nil, err
	}

	host := serverURL.Host
	if serverURL.Port() == "" {
		switch strings.ToLower(serverURL.Scheme) {
		case "https":
			host += ":443"
		case "http":
			host += ":80"
		}
	}

	initialCap := initialPoolCapacity

	if cfg.GeoNode.ClientPoolCapacity < initialPoolCapacity {
		initialCap = 1
	}

	options := proxy.Options{
		InitialPoolCapacity: initialCap,
		ClientPoolCapacity:  cfg.GeoNode.ClientPoolCapacity,
		InsecureConnection:  cfg.GeoNode.InsecureConnection,
		RootCA:              cfg.GeoNode.RootCA,
		MaxConnsPerHost:     cfg.GeoNode.MaxConnsPerHost,
		ReadTimeout:         cfg.GeoNode.ReadTimeout,
		WriteTimeout:        cfg.GeoNode.WriteTimeout,
		ReadBufferSize:      cfg.GeoNode.ReadBufferSize,
		WriteBufferSize:     cfg.GeoNode.WriteBufferSize,
		MaxResponseBodySize: cfg.GeoNode.MaxResponseBodySize,
		DialTimeout:         cfg.GeoNode.DialTimeout,
		UserAgent:           cfg.GeoNode.UserAgent,
		DNSConfig:           cfg.DNS,
		Logger:              logger,
		DNSResolver:         dnsResolver,
	}

	return proxy.NewChanPool(host, &options)
}

package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"flight-offers-api/internal/cache"
	"flight-offers-api/internal/config"
	"flight-offers-api/internal/database"
	"flight-offers-api/internal/events"
	"flight-offers-api/internal/features"
	"flight-offers-api/internal/handler"
	"flight-offers-api/internal/middleware"
	"flight-offers-api/internal/provider"
	"flight-offers-api/internal/service"
	tlsconfig "flight-offers-api/internal/tls"
	"flight-offers-api/internal/tracing"
)

func main() {
	configFile := flag.String("config", "", "Path to a JSON config file")
	port := flag.String("port", "", "Server port (overrides config)")
	enableTLS := flag.Bool("tls", false, "Enable HTTPS/TLS")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *enableTLS {
		cfg.Server.EnableTLS = true
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	tracer, err := tracing.InitTracing(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.Tracing.Environment,
	})
	if err != nil {
		return err
	}

	store, err := database.Open(cfg.Database.Driver, cfg.Database.Path, config.Seconds(cfg.Database.SnapshotTTL))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	lookupCache, closeCache, err := newCache(cfg.Cache)
	if err != nil {
		return err
	}
	defer closeCache()

	upstream, err := newProvider(cfg.Provider)
	if err != nil {
		return err
	}

	flags := features.NewDefaultManager(cfg.Features.Cache, cfg.Features.EventHooks, cfg.Features.Snapshots)

	eventManager := events.NewManager(true)
	eventLog := events.LogHandler(logger)
	for _, t := range []events.EventType{events.EventSearchCompleted, events.EventOffersRanked, events.EventDetailsViewed} {
		eventManager.Subscribe(t, eventLog)
	}

	svc := service.NewService(upstream, store, service.Options{
		Cache:             lookupCache,
		Events:            eventManager,
		Features:          flags,
		Tracer:            tracer,
		Logger:            logger,
		AirportTTL:        config.Seconds(cfg.Cache.AirportTTL),
		SearchTTL:         config.Seconds(cfg.Cache.SearchTTL),
		LookupConcurrency: cfg.Lookup.Concurrency,
		SuggestionLimit:   cfg.Lookup.SuggestionLimit,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.PurgeSnapshots(ctx, time.Minute)

	h := handler.NewHandlerWithOptions(svc, handler.NewHandlerOptions{
		MaxBodySize: cfg.Security.MaxRequestBodySize,
		Features:    flags,
		Logger:      logger,
	})

	r := chi.NewRouter()

	// Middleware (order matters)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.TracingMiddleware(cfg.Tracing.ServiceName))
	r.Use(middleware.MaxBodySize(cfg.Security.MaxRequestBodySize))

	if cfg.RateLimit.Enabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Rate, config.Seconds(cfg.RateLimit.Window))
		defer rateLimiter.Stop()
		r.Use(middleware.RateLimitMiddleware(rateLimiter))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   splitOrigins(cfg.Security.AllowedOrigins),
		AllowedMethods:   []string{"GET", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h.Routes(r)

	var tlsConfig *tls.Config
	if cfg.Server.EnableTLS {
		tlsCfg := tlsconfig.Config{
			CertFile: cfg.Server.CertFile,
			KeyFile:  cfg.Server.KeyFile,
		}
		if cfg.Server.Host != "" {
			tlsCfg.Hosts = []string{cfg.Server.Host}
		}
		tlsConfig, err = tlsconfig.LoadTLSConfig(tlsCfg)
		if err != nil {
			return fmt.Errorf("failed to load TLS configuration: %w", err)
		}
		if tlsCfg.SelfSigned() {
			logger.Warn("no certificate files provided, using self-signed certificate for development")
		}
	}

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		TLSConfig:         tlsConfig,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		protocol := "HTTP"
		if tlsConfig != nil {
			protocol = "HTTPS"
		}
		logger.Info("starting server",
			"protocol", protocol,
			"addr", addr,
			"provider", upstream.Name(),
			"database", cfg.Database.Driver,
			"cache", cfg.Cache.Driver,
		)

		var err error
		if tlsConfig != nil {
			// certificates come from TLSConfig
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-sigint:
		logger.Info("shutting down server")
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), config.Seconds(cfg.Server.ShutdownTimeout))
	defer stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error closing server", "error", err)
	}
	cancel()
	eventManager.Shutdown()
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown failed", "error", err)
	}
	return nil
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func newCache(cfg config.CacheConfig) (cache.Cache, func(), error) {
	switch cfg.Driver {
	case "redis":
		rc, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.Namespace)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return rc, func() { rc.Close() }, nil
	case "memory", "":
		return cache.NewInMemoryCache(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cache driver %q", cfg.Driver)
	}
}

func newProvider(cfg config.ProviderConfig) (provider.Provider, error) {
	switch cfg.Name {
	case "file":
		fp, err := provider.NewFileProvider(cfg.OffersFile, cfg.LocationsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load provider files: %w", err)
		}
		return fp, nil
	case "amadeus":
		return provider.NewAmadeusClient(provider.AmadeusConfig{
			BaseURL:    cfg.BaseURL,
			APIKey:     cfg.APIKey,
			APISecret:  cfg.APISecret,
			Timeout:    config.Seconds(cfg.Timeout),
			MaxResults: cfg.MaxResults,
		}, nil), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Name)
	}
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joshacw/chf-enquiries-map/internal"
	"github.com/joshacw/chf-enquiries-map/internal/backend"
	"github.com/joshacw/chf-enquiries-map/internal/geo"
	"github.com/joshacw/chf-enquiries-map/internal/handler"
	"github.com/joshacw/chf-enquiries-map/internal/metrics"
	"github.com/joshacw/chf-enquiries-map/internal/middleware"
	"github.com/joshacw/chf-enquiries-map/internal/service"
	"github.com/joshacw/chf-enquiries-map/internal/storage"
)

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize object storage for the service-area dataset
	var store storage.Storage
	switch cfg.StorageProvider {
	case storage.ProviderR2:
		store, err = storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		}, logger)
		if err != nil {
			return fmt.Errorf("r2 storage initialization failed: %w", err)
		}
	default:
		store, err = storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		}, logger)
		if err != nil {
			return fmt.Errorf("local storage initialization failed: %w", err)
		}
	}
	logger.Info("Storage ready", "provider", cfg.StorageProvider)

	// Load the service-area dataset. A missing dataset is not fatal; the map
	// reports itself unavailable until a refresh succeeds.
	dataset := geo.NewDataset(store, cfg.DatasetKey, logger)
	loadCtx, loadCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := dataset.Load(loadCtx); err != nil {
		logger.Warn("Service-area dataset unavailable at startup", "key", cfg.DatasetKey, "error", err)
	}
	loadCancel()
	dataset.StartRefresh(ctx, cfg.DatasetRefreshInterval)

	// Initialize backend client. The widget degrades to error partials when
	// the backend is not configured.
	var client backend.Client
	if cfg.BackendURL != "" {
		client, err = backend.NewHTTPClient(backend.Config{
			BaseURL: cfg.BackendURL,
			APIKey:  cfg.BackendKey,
			Timeout: cfg.BackendTimeout,
		}, logger)
		if err != nil {
			return fmt.Errorf("backend client initialization failed: %w", err)
		}
	} else {
		logger.Warn("No backend configured; availability and lead fetches will fail")
	}

	// Initialize template renderer
	renderer, err := handler.NewRenderer(handler.RendererConfig{
		TemplatesDir: "web/templates",
		Logger:       logger,
		IsDev:        cfg.Env == "development",
	})
	if err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}
	logger.Info("Templates loaded", "count", len(renderer.ListTemplates()))

	// Initialize services
	availabilityService := service.NewAvailabilityService(client, logger)
	leadService := service.NewLeadService(client, logger)
	guard := service.NewGuard()

	// Initialize handlers
	widgetHandler := handler.NewWidgetHandler(availabilityService, guard, renderer, logger, cfg.DefaultDaysAhead)
	leadHandler := handler.NewLeadHandler(leadService, renderer, logger)
	mapHandler := handler.NewMapHandler(dataset, renderer, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Static files
	staticFS := http.FileServer(http.Dir("web/static"))
	mux.Handle("GET /static/", http.StripPrefix("/static/", staticFS))

	// Local storage files (dataset uploads in development)
	if cfg.StorageProvider == storage.ProviderLocal {
		filesFS := http.FileServer(http.Dir(cfg.LocalStoragePath))
		mux.Handle("GET /files/", http.StripPrefix("/files/", filesFS))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics, optionally behind basic auth
	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	// Application routes
	widgetHandler.RegisterRoutes(mux)
	leadHandler.RegisterRoutes(mux)
	mapHandler.RegisterRoutes(mux)

	// Middleware stack (outside-in)
	isSecure := cfg.Env != "development"
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)

	root := middleware.Stack(
		loggingMw.Handler,
		metrics.Middleware,
		securityMw.Handler,
	)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Stop the dataset refresh loop
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"errors"
	"fake-webhook-api/internal/config"
	"fake-webhook-api/internal/dispatch"
	"fake-webhook-api/internal/metrics"
	"fake-webhook-api/internal/middleware"
	"fake-webhook-api/internal/webhooks"
	"fake-webhook-api/internal/worker"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.FromEnv()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if envErr != nil {
		logger.Warn("No .env file found, continuing with environment variables")
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration. Application cannot start.", "error", err)
		os.Exit(1)
	}
	if cfg.DefaultCallbackURL == "" {
		logger.Warn("DEFAULT_CALLBACK_URL is not set; every request must send callbackUrl")
	}

	var sink metrics.Sink = metrics.NewNoopSink()
	reg := prometheus.NewRegistry()
	if cfg.MetricsEnabled {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		sink = metrics.NewPrometheusSink(reg, logger)
	}

	// 1. Create and start the worker pool that runs deferred deliveries.
	dispatcher := dispatch.NewHTTPDispatcher(cfg.CallbackTimeout)
	workerPool := worker.NewPool(cfg.QueueSize, logger, dispatcher, sink)
	workerPool.Start(cfg.WorkerCount)

	// 2. Instantiate the request handler, passing it the pool as its scheduler.
	handler := webhooks.NewHandler(logger, workerPool, cfg.DefaultCallbackURL, config.DeliveryDelay, sink)

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.Recoverer)
	router.Use(middleware.RequestLogger(logger))
	handler.Mount(router)
	if cfg.MetricsEnabled {
		router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		logger.Info("Fake webhook API listening",
			"address", server.Addr,
			"delay", config.DeliveryDelay,
			"workers", cfg.WorkerCount,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Server shutting down...")

	// Stop accepting requests first so nothing new is scheduled.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// In-flight callbacks finish; pending ones are dropped.
	workerPool.Stop()

	logger.Info("Server exited gracefully")
}

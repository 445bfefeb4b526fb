package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/convergio/azure-cost-api/internal/azure"
	"github.com/convergio/azure-cost-api/internal/config"
	"github.com/convergio/azure-cost-api/internal/costs"
	"github.com/convergio/azure-cost-api/internal/logger"
	"github.com/convergio/azure-cost-api/internal/metrics"
	"github.com/convergio/azure-cost-api/internal/server"
	"github.com/convergio/azure-cost-api/internal/version"
)

const (
	// DefaultShutdownTimeout is the maximum time to wait for graceful shutdown
	DefaultShutdownTimeout = 30 * time.Second
)

var configPath = flag.String("config", "config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	// Load configuration first (need log level from config)
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logger
	logger := logger.New(cfg.LogLevel)
	logger.Info("Azure Cost API starting",
		"version", version.Version,
		"config_path", *configPath)

	logger.Info("Configuration loaded successfully",
		"subscription_id", cfg.Subscription.ID,
		"subscription_name", cfg.Subscription.Name,
		"http_port", cfg.HTTPPort,
		"cache_ttl_seconds", cfg.CacheTTL,
		"api_timeout_seconds", cfg.APITimeout,
		"max_retries", cfg.MaxRetries,
		"service_principal", cfg.UseServicePrincipal())

	// Set up Prometheus registry with runtime and process metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Create Azure credential and query client
	logger.Info("Initializing Azure credential")
	cred, err := azure.NewCredential(cfg)
	if err != nil {
		logger.Error("Failed to create Azure credential", "error", err)
		os.Exit(1)
	}

	queryClient := azure.NewQueryClient(cfg, azure.NewTokenSource(cred), logger, m)
	costService := costs.NewService(cfg, queryClient, logger, m)

	// Create and start HTTP server
	logger.Info("Creating HTTP server", "port", cfg.HTTPPort)
	srv := server.NewServer(cfg, costService, registry, logger)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("Server error", "error", err)
		os.Exit(1)

	case sig := <-shutdown:
		logger.Info("Received shutdown signal, starting graceful shutdown", "signal", sig.String())

		// Shutdown server with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during server shutdown", "error", err)
			// Force shutdown
			os.Exit(1)
		}

		logger.Info("Server stopped gracefully")
	}
}

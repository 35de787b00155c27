package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/lnmn249/faire-lightspeed-lite/internal/api"
	"github.com/lnmn249/faire-lightspeed-lite/internal/config"
	"github.com/lnmn249/faire-lightspeed-lite/internal/lightspeed"
	"github.com/lnmn249/faire-lightspeed-lite/internal/secrets"
	"github.com/lnmn249/faire-lightspeed-lite/internal/service"
	"github.com/lnmn249/faire-lightspeed-lite/internal/store"
)

func main() {
	// .env is optional; env vars win either way
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("Starting Faire to Lightspeed bridge",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("store_backend", cfg.Store.Backend),
		zap.Bool("dry_run", cfg.DryRun),
	)

	// Resolve vendor credentials; absence is fatal at startup
	resolver := secrets.New(cfg.Secrets, logger)
	baseURL, err := resolver.Get(secrets.KeyBaseURL)
	if err != nil {
		logger.Fatal("Failed to resolve vendor base URL", zap.Error(err))
	}
	apiKey, err := resolver.Get(secrets.KeyAPIKey)
	if err != nil {
		logger.Fatal("Failed to resolve vendor API key", zap.Error(err))
	}

	// Initialize the catalog store
	ctx := context.Background()
	catalogStore, err := store.New(ctx, cfg.Store, logger)
	if err != nil {
		logger.Fatal("Failed to initialize catalog store", zap.Error(err))
	}
	if closer, ok := catalogStore.(*store.MongoStore); ok {
		defer closer.Close(context.Background())
	}

	// Vendor client and services
	client := lightspeed.NewClient(lightspeed.Config{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		UserAgent: cfg.Lightspeed.UserAgent,
		DryRun:    cfg.DryRun,
		Timeout:   cfg.Lightspeed.Timeout,
	}, logger)
	catalogService := service.NewCatalogService(client, catalogStore, logger)
	orderService := service.NewOrderService(client, catalogStore, resolver, logger)

	// Initialize router
	router := api.NewRouter(cfg, catalogService, orderService, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Streaming refresh holds the response open across every paginated
		// fetch, so no write timeout here.
		IdleTimeout: 60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

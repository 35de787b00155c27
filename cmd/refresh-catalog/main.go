package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/lnmn249/faire-lightspeed-lite/internal/config"
	"github.com/lnmn249/faire-lightspeed-lite/internal/lightspeed"
	"github.com/lnmn249/faire-lightspeed-lite/internal/secrets"
	"github.com/lnmn249/faire-lightspeed-lite/internal/service"
	"github.com/lnmn249/faire-lightspeed-lite/internal/store"
)

// Refreshes the catalog mirror once from the command line, without
// running the HTTP server.
func main() {
	pageSize := flag.Int("page-size", service.DefaultPageSize, "vendor API page size")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	resolver := secrets.New(cfg.Secrets, logger)
	baseURL, err := resolver.Get(secrets.KeyBaseURL)
	if err != nil {
		logger.Fatal("Failed to resolve vendor base URL", zap.Error(err))
	}
	apiKey, err := resolver.Get(secrets.KeyAPIKey)
	if err != nil {
		logger.Fatal("Failed to resolve vendor API key", zap.Error(err))
	}

	ctx := context.Background()
	catalogStore, err := store.New(ctx, cfg.Store, logger)
	if err != nil {
		logger.Fatal("Failed to initialize catalog store", zap.Error(err))
	}
	if closer, ok := catalogStore.(*store.MongoStore); ok {
		defer closer.Close(context.Background())
	}

	client := lightspeed.NewClient(lightspeed.Config{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		UserAgent: cfg.Lightspeed.UserAgent,
		DryRun:    cfg.DryRun,
		Timeout:   cfg.Lightspeed.Timeout,
	}, logger)

	catalog := service.NewCatalogService(client, catalogStore, logger)
	result, err := catalog.Refresh(ctx, *pageSize)
	if err != nil {
		logger.Fatal("Refresh failed", zap.Error(err))
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}

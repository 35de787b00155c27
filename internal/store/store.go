package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lnmn249/faire-lightspeed-lite/internal/config"
	"github.com/lnmn249/faire-lightspeed-lite/internal/domain"
)

// CatalogStore persists the catalog snapshot and small named metadata
// values. LoadCatalog on an empty or missing store returns an all-empty
// snapshot, never an error. GetMeta reports ok=false when the key is absent.
type CatalogStore interface {
	SaveCatalog(ctx context.Context, snapshot *domain.CatalogSnapshot) error
	LoadCatalog(ctx context.Context) (*domain.CatalogSnapshot, error)
	SetMeta(ctx context.Context, key, value string) error
	GetMeta(ctx context.Context, key string) (string, bool, error)
}

// New returns the concrete store selected by configuration
func New(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (CatalogStore, error) {
	switch cfg.Backend {
	case "mongo":
		return NewMongoStore(ctx, cfg, logger)
	case "file":
		return NewFileStore(cfg.DataDir, logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

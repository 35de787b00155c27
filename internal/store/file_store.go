package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/lnmn249/faire-lightspeed-lite/internal/domain"
)

const (
	catalogFileName = "catalog.json"
	metaFileName    = "meta.json"
)

// FileStore keeps the snapshot in a single JSON file. A save replaces the
// prior snapshot wholesale; there is no partial merge.
type FileStore struct {
	catalogPath string
	metaPath    string
	logger      *zap.Logger
}

type metaRecord struct {
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at"`
}

// NewFileStore creates the data directory if needed
func NewFileStore(dataDir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &FileStore{
		catalogPath: filepath.Join(dataDir, catalogFileName),
		metaPath:    filepath.Join(dataDir, metaFileName),
		logger:      logger,
	}, nil
}

func (s *FileStore) SaveCatalog(ctx context.Context, snapshot *domain.CatalogSnapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := os.WriteFile(s.catalogPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	s.logger.Info("Saved catalog to file",
		zap.Int("products", len(snapshot.Products)),
		zap.Int("suppliers", len(snapshot.Suppliers)),
		zap.Int("brands", len(snapshot.Brands)),
	)
	return nil
}

func (s *FileStore) LoadCatalog(ctx context.Context) (*domain.CatalogSnapshot, error) {
	data, err := os.ReadFile(s.catalogPath)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("No local catalog file found")
			return domain.EmptySnapshot(), nil
		}
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	snapshot := domain.EmptySnapshot()

	// Legacy shape: a bare product array is interpreted as the products
	// field with suppliers/brands empty.
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(data, &snapshot.Products); err != nil {
			return nil, fmt.Errorf("failed to decode legacy catalog file: %w", err)
		}
	} else if err := json.Unmarshal(data, snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode catalog file: %w", err)
	}

	if snapshot.Products == nil {
		snapshot.Products = []domain.Product{}
	}
	if snapshot.Suppliers == nil {
		snapshot.Suppliers = []domain.Supplier{}
	}
	if snapshot.Brands == nil {
		snapshot.Brands = []domain.Brand{}
	}

	s.logger.Info("Loaded catalog from file",
		zap.Int("products", len(snapshot.Products)),
		zap.Int("suppliers", len(snapshot.Suppliers)),
		zap.Int("brands", len(snapshot.Brands)),
	)
	return snapshot, nil
}

func (s *FileStore) SetMeta(ctx context.Context, key, value string) error {
	blob := map[string]metaRecord{}
	if data, err := os.ReadFile(s.metaPath); err == nil {
		// A corrupt meta file starts over; meta values are rewritten on
		// every refresh anyway.
		_ = json.Unmarshal(data, &blob)
	}
	blob[key] = metaRecord{
		Value:     value,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal meta: %w", err)
	}
	if err := os.WriteFile(s.metaPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write meta file: %w", err)
	}
	return nil
}

func (s *FileStore) GetMeta(ctx context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(s.metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read meta file: %w", err)
	}
	blob := map[string]metaRecord{}
	if err := json.Unmarshal(data, &blob); err != nil {
		return "", false, nil
	}
	rec, ok := blob[key]
	if !ok {
		return "", false, nil
	}
	return rec.Value, true, nil
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/lnmn249/faire-lightspeed-lite/internal/domain"
	"github.com/lnmn249/faire-lightspeed-lite/internal/store"
)

// DefaultPageSize is used when the caller does not supply one
const DefaultPageSize = 200

// CatalogService rebuilds the local catalog mirror from the vendor API
type CatalogService struct {
	vendor VendorAPI
	store  store.CatalogStore
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(vendor VendorAPI, catalogStore store.CatalogStore, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		vendor: vendor,
		store:  catalogStore,
		logger: logger,
	}
}

// RefreshEvent is one notification emitted by the streaming refresh
type RefreshEvent struct {
	Event string // progress, last_refresh, done, error
	Data  string
}

// Refresh pulls products, suppliers and brands, flattens nested
// supplier/brand refs on product rows, persists the snapshot wholesale and
// stamps both refresh timestamps together.
func (s *CatalogService) Refresh(ctx context.Context, pageSize int) (*domain.RefreshResult, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	products, err := s.vendor.ListProducts(ctx, pageSize, false)
	if err != nil {
		return nil, err
	}
	suppliers, err := s.vendor.ListSuppliers(ctx, pageSize)
	if err != nil {
		return nil, err
	}
	brands, err := s.vendor.ListBrands(ctx, pageSize)
	if err != nil {
		return nil, err
	}

	domain.FlattenProducts(products)

	snapshot := &domain.CatalogSnapshot{
		Products:  products,
		Suppliers: suppliers,
		Brands:    brands,
	}
	if err := s.store.SaveCatalog(ctx, snapshot); err != nil {
		return nil, err
	}

	epoch, iso, err := s.stampLastRefresh(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.RefreshResult{
		OK: true,
		Count: map[string]int{
			"products":  len(products),
			"suppliers": len(suppliers),
			"brands":    len(brands),
		},
		LastRefresh: domain.LastRefresh{Epoch: &epoch, ISO: &iso},
	}, nil
}

// RefreshStream performs the same fetch/save steps synchronously but
// yields one progress notification per completed step, then last_refresh
// and done. The channel always reaches a defined end state: any failure,
// panics included, becomes a terminal error event before the channel
// closes, and a canceled context (the SSE consumer went away) stops the
// producer even when nothing is draining.
func (s *CatalogService) RefreshStream(ctx context.Context, pageSize int) <-chan RefreshEvent {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	events := make(chan RefreshEvent)

	// Every send races the context so an abandoned channel never strands
	// the goroutine
	emit := func(ev RefreshEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(events)
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Streaming refresh panicked", zap.Any("panic", r))
				emit(RefreshEvent{Event: "error", Data: fmt.Sprintf("%v", r)})
			}
		}()

		if !emit(RefreshEvent{Event: "progress", Data: "Starting fetch..."}) {
			return
		}

		products, err := s.vendor.ListProducts(ctx, pageSize, false)
		if err != nil {
			emit(RefreshEvent{Event: "error", Data: err.Error()})
			return
		}
		if !emit(RefreshEvent{Event: "progress", Data: fmt.Sprintf("Pulled %d products", len(products))}) {
			return
		}

		suppliers, err := s.vendor.ListSuppliers(ctx, pageSize)
		if err != nil {
			emit(RefreshEvent{Event: "error", Data: err.Error()})
			return
		}
		if !emit(RefreshEvent{Event: "progress", Data: fmt.Sprintf("Pulled %d suppliers", len(suppliers))}) {
			return
		}

		brands, err := s.vendor.ListBrands(ctx, pageSize)
		if err != nil {
			emit(RefreshEvent{Event: "error", Data: err.Error()})
			return
		}
		if !emit(RefreshEvent{Event: "progress", Data: fmt.Sprintf("Pulled %d brands", len(brands))}) {
			return
		}

		domain.FlattenProducts(products)

		snapshot := &domain.CatalogSnapshot{
			Products:  products,
			Suppliers: suppliers,
			Brands:    brands,
		}
		if err := s.store.SaveCatalog(ctx, snapshot); err != nil {
			emit(RefreshEvent{Event: "error", Data: err.Error()})
			return
		}

		epoch, iso, err := s.stampLastRefresh(ctx)
		if err != nil {
			emit(RefreshEvent{Event: "error", Data: err.Error()})
			return
		}

		if !emit(RefreshEvent{Event: "progress", Data: "Saved catalog"}) {
			return
		}

		payload, _ := json.Marshal(map[string]any{"epoch": epoch, "iso": iso})
		if !emit(RefreshEvent{Event: "last_refresh", Data: string(payload)}) {
			return
		}
		emit(RefreshEvent{Event: "done", Data: "ok"})
	}()
	return events
}

// stampLastRefresh writes the epoch and ISO metas together so readers
// needing either representation never convert
func (s *CatalogService) stampLastRefresh(ctx context.Context) (int64, string, error) {
	epoch := time.Now().Unix()
	iso := time.Unix(epoch, 0).UTC().Format(time.RFC3339)
	if err := s.store.SetMeta(ctx, domain.MetaLastRefreshEpoch, strconv.FormatInt(epoch, 10)); err != nil {
		return 0, "", err
	}
	if err := s.store.SetMeta(ctx, domain.MetaLastRefreshISO, iso); err != nil {
		return 0, "", err
	}
	return epoch, iso, nil
}

// LastRefresh reads the refresh timestamps, deriving the ISO form from the
// epoch when only the epoch survives
func (s *CatalogService) LastRefresh(ctx context.Context) (*domain.LastRefresh, error) {
	out := &domain.LastRefresh{}

	if raw, ok, err := s.store.GetMeta(ctx, domain.MetaLastRefreshEpoch); err != nil {
		return nil, err
	} else if ok {
		if epoch, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			out.Epoch = &epoch
		}
	}

	if iso, ok, err := s.store.GetMeta(ctx, domain.MetaLastRefreshISO); err != nil {
		return nil, err
	} else if ok && iso != "" {
		out.ISO = &iso
	} else if out.Epoch != nil {
		derived := time.Unix(*out.Epoch, 0).UTC().Format(time.RFC3339)
		out.ISO = &derived
	}

	return out, nil
}

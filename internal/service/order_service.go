package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lnmn249/faire-lightspeed-lite/internal/domain"
	"github.com/lnmn249/faire-lightspeed-lite/internal/secrets"
	"github.com/lnmn249/faire-lightspeed-lite/internal/store"
	apperrors "github.com/lnmn249/faire-lightspeed-lite/pkg/errors"
)

// OrderService reconciles externally sourced order lines against the
// catalog mirror and drives the create-then-submit workflow
type OrderService struct {
	vendor  VendorAPI
	store   store.CatalogStore
	secrets secrets.Resolver
	logger  *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(vendor VendorAPI, catalogStore store.CatalogStore, resolver secrets.Resolver, logger *zap.Logger) *OrderService {
	return &OrderService{
		vendor:  vendor,
		store:   catalogStore,
		secrets: resolver,
		logger:  logger,
	}
}

type matchKey struct {
	sku   string
	brand string
}

func normalizeSKU(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Preview partitions structured rows into matched and missing by exact
// (sku, brand) lookup against the local mirror. SKU comparison is
// case-insensitive and whitespace-trimmed; brand comparison is trimmed.
// Rows with an empty sku or brand are dropped silently.
func (s *OrderService) Preview(ctx context.Context, lines []domain.OrderLine) (*domain.PreviewResult, error) {
	snapshot, err := s.store.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[matchKey]*domain.Product, len(snapshot.Products))
	for i := range snapshot.Products {
		p := &snapshot.Products[i]
		key := matchKey{
			sku:   normalizeSKU(p.SupplierCode),
			brand: strings.TrimSpace(p.BrandName),
		}
		if _, exists := index[key]; !exists {
			index[key] = p
		}
	}

	result := &domain.PreviewResult{
		Matched: []domain.MatchedLine{},
		Missing: []domain.MissingLine{},
	}
	for _, line := range lines {
		sku := normalizeSKU(line.SKU)
		brand := strings.TrimSpace(line.BrandName)
		if sku == "" || brand == "" {
			continue
		}
		if p, ok := index[matchKey{sku: sku, brand: brand}]; ok {
			result.Matched = append(result.Matched, domain.MatchedLine{
				SKU:         sku,
				BrandName:   brand,
				Quantity:    line.Quantity,
				ProductID:   p.ID,
				ProductName: p.Name,
				SupplierID:  p.SupplierID,
			})
		} else {
			result.Missing = append(result.Missing, domain.MissingLine{
				SKU:       sku,
				BrandName: brand,
				Quantity:  line.Quantity,
			})
		}
	}
	return result, nil
}

// Submit runs the stock-order workflow: resolve supplier, resolve brand,
// build line items (creating missing products when asked to), and only
// once at least one line item exists open the consignment and attach the
// items. The ordering is an invariant: no empty or orphaned consignments.
func (s *OrderService) Submit(ctx context.Context, lines []domain.OrderLine, autoCreateMissing bool) (*domain.SubmitResult, error) {
	if len(lines) == 0 {
		return nil, &apperrors.ErrValidation{Message: "No items provided in request"}
	}

	// Step 1: resolve supplier. A line that already carries a product_id
	// is trusted for its supplier fields; otherwise derive a name from the
	// first line and look up or create.
	var matched []domain.OrderLine
	for _, line := range lines {
		if line.ProductID != "" {
			matched = append(matched, line)
		}
	}

	var supplierID, supplierName string
	if len(matched) > 0 {
		supplierID = matched[0].SupplierID
		supplierName = matched[0].SupplierName
	} else {
		supplierName = lines[0].SupplierName
		if supplierName == "" {
			supplierName = lines[0].BrandName
		}
		id, err := s.vendor.SupplierIDByName(ctx, supplierName)
		if err != nil {
			return nil, err
		}
		supplierID = id
		if supplierID == "" {
			sup, err := s.vendor.CreateSupplier(ctx, supplierName, "")
			if err != nil {
				return nil, err
			}
			supplierID = sup.ID
		}
	}
	if supplierID == "" {
		return nil, &apperrors.ErrValidation{Message: "Could not resolve supplier_id"}
	}

	// Step 2: resolve brand. Failure is non-fatal; products created below
	// simply omit the brand id.
	var brandName string
	if len(matched) > 0 {
		brandName = matched[0].BrandName
	} else {
		brandName = lines[0].BrandName
	}
	var brandID string
	if brandName != "" {
		id, err := s.vendor.BrandIDByName(ctx, brandName)
		if err != nil {
			s.logger.Warn("Brand lookup failed", zap.String("brand", brandName), zap.Error(err))
		} else {
			brandID = id
		}
		if brandID == "" {
			b, err := s.vendor.CreateBrand(ctx, brandName)
			if err != nil {
				s.logger.Warn("Brand creation failed", zap.String("brand", brandName), zap.Error(err))
			} else {
				brandID = b.ID
			}
		}
	}

	// Step 3: build line items before any consignment exists
	lineItems := make([]domain.LineItem, 0, len(lines))
	createdProducts := []domain.CreatedProduct{}

	for _, line := range lines {
		if line.ProductID != "" {
			li := domain.LineItem{ProductID: line.ProductID, Count: line.Quantity}
			if line.WholesalePrice != nil {
				cost := *line.WholesalePrice
				li.Cost = &cost
			}
			lineItems = append(lineItems, li)
			continue
		}

		if !autoCreateMissing {
			continue
		}

		draft := domain.ProductDraft{
			Name:         line.ProductName,
			SupplierCode: firstNonEmpty(line.SupplierCode, line.SKU),
			SupplierID:   supplierID,
			Type:         domain.ProductTypeStandard,
			BrandID:      brandID,
		}
		if line.WholesalePrice != nil {
			cost := *line.WholesalePrice
			draft.DefaultCost = &cost
		}

		productID, err := s.vendor.CreateProduct(ctx, draft)
		if err != nil {
			if _, ok := err.(*apperrors.ErrProductValidation); ok {
				return nil, err
			}
			return nil, fmt.Errorf("failed to create product '%s': %w", draft.Name, err)
		}
		if productID == "" {
			continue
		}

		createdProducts = append(createdProducts, domain.CreatedProduct{
			ID:           productID,
			Name:         draft.Name,
			SupplierCode: draft.SupplierCode,
		})
		li := domain.LineItem{ProductID: productID, Count: line.Quantity}
		if line.WholesalePrice != nil {
			cost := *line.WholesalePrice
			li.Cost = &cost
		}
		lineItems = append(lineItems, li)
	}

	// Step 4: never open an empty consignment
	if len(lineItems) == 0 {
		return nil, &apperrors.ErrValidation{Message: "No valid products to add to consignment"}
	}

	// Step 5: open the consignment shell
	outletID, err := s.secrets.Get(secrets.KeyOutletID)
	if err != nil {
		return nil, err
	}
	cons, err := s.vendor.CreateConsignment(ctx, domain.ConsignmentDraft{
		OutletID:     outletID,
		SupplierID:   supplierID,
		SupplierName: supplierName,
		OrderNumber:  lines[0].OrderNumber,
	})
	if err != nil {
		return nil, err
	}

	// Step 6: best-effort attachment; accepted items only in results
	results, err := s.vendor.AddConsignmentProducts(ctx, cons.ID, lineItems)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Submitted stock order",
		zap.String("consignment_id", cons.ID),
		zap.String("supplier_id", supplierID),
		zap.Int("line_count", len(lineItems)),
		zap.Int("accepted", len(results)),
		zap.Int("created_products", len(createdProducts)),
	)

	return &domain.SubmitResult{
		OK:              true,
		ConsignmentID:   cons.ID,
		SupplierID:      supplierID,
		SupplierName:    supplierName,
		BrandID:         brandID,
		CreatedProducts: createdProducts,
		LineCount:       len(lineItems),
		Results:         results,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

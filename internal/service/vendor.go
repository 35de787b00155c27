package service

import (
	"context"

	"github.com/lnmn249/faire-lightspeed-lite/internal/domain"
)

// VendorAPI is the slice of the Lightspeed client the engine depends on.
// *lightspeed.Client satisfies it; tests substitute fakes.
type VendorAPI interface {
	ListProducts(ctx context.Context, pageSize int, includeDeleted bool) ([]domain.Product, error)
	ListSuppliers(ctx context.Context, pageSize int) ([]domain.Supplier, error)
	ListBrands(ctx context.Context, pageSize int) ([]domain.Brand, error)
	SupplierIDByName(ctx context.Context, name string) (string, error)
	BrandIDByName(ctx context.Context, name string) (string, error)
	SearchProductsByBrand(ctx context.Context, brandID string) ([]map[string]any, error)
	CreateSupplier(ctx context.Context, name, description string) (*domain.Supplier, error)
	CreateBrand(ctx context.Context, name string) (*domain.Brand, error)
	CreateProduct(ctx context.Context, draft domain.ProductDraft) (string, error)
	CreateConsignment(ctx context.Context, draft domain.ConsignmentDraft) (*domain.Consignment, error)
	AddConsignmentProducts(ctx context.Context, consignmentID string, items []domain.LineItem) ([]map[string]any, error)
}

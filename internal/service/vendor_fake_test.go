package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/lnmn249/faire-lightspeed-lite/internal/domain"
)

// fakeVendor records every call in order so tests can assert workflow
// sequencing, and lets each behavior be overridden per scenario.
type fakeVendor struct {
	calls []string

	products  []domain.Product
	suppliers []domain.Supplier
	brands    []domain.Brand
	listErr   error

	supplierIDs map[string]string // lower(name) -> id
	brandIDs    map[string]string
	liveListing []map[string]any

	createSupplierFn func(name string) (*domain.Supplier, error)
	createBrandFn    func(name string) (*domain.Brand, error)
	createProductFn  func(draft domain.ProductDraft) (string, error)

	productDrafts []domain.ProductDraft
	consignments  []domain.ConsignmentDraft
	attachedItems [][]domain.LineItem
}

func (f *fakeVendor) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeVendor) callCount(name string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, name) {
			n++
		}
	}
	return n
}

func (f *fakeVendor) ListProducts(ctx context.Context, pageSize int, includeDeleted bool) ([]domain.Product, error) {
	f.record("ListProducts")
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Product, len(f.products))
	copy(out, f.products)
	return out, nil
}

func (f *fakeVendor) ListSuppliers(ctx context.Context, pageSize int) ([]domain.Supplier, error) {
	f.record("ListSuppliers")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.suppliers, nil
}

func (f *fakeVendor) ListBrands(ctx context.Context, pageSize int) ([]domain.Brand, error) {
	f.record("ListBrands")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.brands, nil
}

func (f *fakeVendor) SupplierIDByName(ctx context.Context, name string) (string, error) {
	f.record("SupplierIDByName")
	return f.supplierIDs[strings.ToLower(strings.TrimSpace(name))], nil
}

func (f *fakeVendor) BrandIDByName(ctx context.Context, name string) (string, error) {
	f.record("BrandIDByName")
	return f.brandIDs[strings.ToLower(strings.TrimSpace(name))], nil
}

func (f *fakeVendor) SearchProductsByBrand(ctx context.Context, brandID string) ([]map[string]any, error) {
	f.record("SearchProductsByBrand")
	return f.liveListing, nil
}

func (f *fakeVendor) CreateSupplier(ctx context.Context, name, description string) (*domain.Supplier, error) {
	f.record("CreateSupplier")
	if f.createSupplierFn != nil {
		return f.createSupplierFn(name)
	}
	return &domain.Supplier{ID: "sup-new", Name: name}, nil
}

func (f *fakeVendor) CreateBrand(ctx context.Context, name string) (*domain.Brand, error) {
	f.record("CreateBrand")
	if f.createBrandFn != nil {
		return f.createBrandFn(name)
	}
	return &domain.Brand{ID: "brand-new", Name: name}, nil
}

func (f *fakeVendor) CreateProduct(ctx context.Context, draft domain.ProductDraft) (string, error) {
	f.record("CreateProduct")
	f.productDrafts = append(f.productDrafts, draft)
	if f.createProductFn != nil {
		return f.createProductFn(draft)
	}
	return fmt.Sprintf("prod-new-%d", len(f.productDrafts)), nil
}

func (f *fakeVendor) CreateConsignment(ctx context.Context, draft domain.ConsignmentDraft) (*domain.Consignment, error) {
	f.record("CreateConsignment")
	f.consignments = append(f.consignments, draft)
	return &domain.Consignment{
		ID:         "cons-1",
		OutletID:   draft.OutletID,
		Type:       domain.ConsignmentTypeSupplier,
		Status:     domain.ConsignmentStatusOpen,
		SupplierID: draft.SupplierID,
	}, nil
}

func (f *fakeVendor) AddConsignmentProducts(ctx context.Context, consignmentID string, items []domain.LineItem) ([]map[string]any, error) {
	f.record("AddConsignmentProducts")
	f.attachedItems = append(f.attachedItems, items)
	results := make([]map[string]any, 0, len(items))
	for _, li := range items {
		results = append(results, map[string]any{"product_id": li.ProductID, "count": li.Count})
	}
	return results, nil
}

// fakeResolver serves credentials from a map
type fakeResolver struct {
	values map[string]string
}

func (f *fakeResolver) Get(name string) (string, error) {
	if v, ok := f.values[name]; ok {
		return v, nil
	}
	return "", fmt.Errorf("secret %s is not set", name)
}

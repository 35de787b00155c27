package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lnmn249/faire-lightspeed-lite/internal/config"
	"github.com/lnmn249/faire-lightspeed-lite/internal/domain"
	"github.com/lnmn249/faire-lightspeed-lite/internal/secrets"
	"github.com/lnmn249/faire-lightspeed-lite/internal/service"
	"github.com/lnmn249/faire-lightspeed-lite/internal/store"
)

// stubVendor is a canned-answer vendor for route-level tests
type stubVendor struct{}

func (stubVendor) ListProducts(ctx context.Context, pageSize int, includeDeleted bool) ([]domain.Product, error) {
	return []domain.Product{{ID: "p1", SupplierCode: "ABC-1", BrandName: "Glow Co"}}, nil
}
func (stubVendor) ListSuppliers(ctx context.Context, pageSize int) ([]domain.Supplier, error) {
	return []domain.Supplier{{ID: "sup-1", Name: "Glow Co"}}, nil
}
func (stubVendor) ListBrands(ctx context.Context, pageSize int) ([]domain.Brand, error) {
	return []domain.Brand{{ID: "brand-1", Name: "Glow Co"}}, nil
}
func (stubVendor) SupplierIDByName(ctx context.Context, name string) (string, error) {
	return "sup-1", nil
}
func (stubVendor) BrandIDByName(ctx context.Context, name string) (string, error) {
	return "brand-1", nil
}
func (stubVendor) SearchProductsByBrand(ctx context.Context, brandID string) ([]map[string]any, error) {
	return []map[string]any{{"id": "p1", "supplier_code": "ABC-1"}}, nil
}
func (stubVendor) CreateSupplier(ctx context.Context, name, description string) (*domain.Supplier, error) {
	return &domain.Supplier{ID: "sup-1", Name: name}, nil
}
func (stubVendor) CreateBrand(ctx context.Context, name string) (*domain.Brand, error) {
	return &domain.Brand{ID: "brand-1", Name: name}, nil
}
func (stubVendor) CreateProduct(ctx context.Context, draft domain.ProductDraft) (string, error) {
	return "prod-1", nil
}
func (stubVendor) CreateConsignment(ctx context.Context, draft domain.ConsignmentDraft) (*domain.Consignment, error) {
	return &domain.Consignment{ID: "cons-1"}, nil
}
func (stubVendor) AddConsignmentProducts(ctx context.Context, consignmentID string, items []domain.LineItem) ([]map[string]any, error) {
	return []map[string]any{}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	t.Setenv("OUTLET_ID", "outlet-1")

	logger := zap.NewNop()
	fileStore, err := store.NewFileStore(t.TempDir(), logger)
	require.NoError(t, err)

	vendor := stubVendor{}
	catalog := service.NewCatalogService(vendor, fileStore, logger)
	orders := service.NewOrderService(vendor, fileStore, &secrets.EnvResolver{}, logger)

	cfg := &config.Config{Environment: "test", UIOrigin: "http://localhost:5173"}
	return NewRouter(cfg, catalog, orders, logger)
}

func doRequest(t *testing.T, router http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthRoute(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health", "/api/health"} {
		rec := doRequest(t, router, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), `"status":"ok"`, path)
	}
}

func TestRootBanner(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/orders/submit")
}

func TestRequestIDHeaderSet(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/health", "", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/orders/preview", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCatalogRefreshRoute(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/catalog/refresh?page_size=10", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":true`)
	assert.Contains(t, rec.Body.String(), `"products":1`)
}

func TestLastRefreshRouteBeforeAnyRefresh(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/catalog/last-refresh", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"epoch":null`)
}

func TestOrdersPreviewRoute(t *testing.T) {
	router := newTestRouter(t)

	// Seed the mirror first
	rec := doRequest(t, router, http.MethodGet, "/api/catalog/refresh", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := `{"items":[{"sku":"abc-1","brand_name":"Glow Co","quantity":2}]}`
	rec = doRequest(t, router, http.MethodPost, "/api/orders/preview", "application/json", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"product_id":"p1"`)
}

func TestOrdersPreviewRejectsMalformedJSON(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/orders/preview", "application/json", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrdersSubmitEmptyItemsIsBadRequest(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/orders/submit", "application/json", `{"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No items provided in request")
}

func TestOrdersSubmitMatchedLine(t *testing.T) {
	router := newTestRouter(t)

	body := `{"items":[{"product_id":"p1","supplier_id":"sup-1","supplier_name":"Glow Co","quantity":2}]}`
	rec := doRequest(t, router, http.MethodPost, "/api/orders/submit", "application/json", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"consignment_id":"cons-1"`)
}

func TestOrdersPreviewCSVRequiresUpload(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/orders/preview-csv", "application/json", "{}")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "file upload required")
}

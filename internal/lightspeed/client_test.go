package lightspeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lnmn249/faire-lightspeed-lite/internal/domain"
	apperrors "github.com/lnmn249/faire-lightspeed-lite/pkg/errors"
)

func newTestClient(t *testing.T, baseURL string, dryRun bool) *Client {
	t.Helper()
	return NewClient(Config{
		BaseURL: baseURL,
		APIKey:  "test-key",
		DryRun:  dryRun,
	}, zap.NewNop())
}

func TestListProductsFollowsPagination(t *testing.T) {
	pages := map[string]int{"": 2, "2": 2, "3": 1}
	var requests []string

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.String())

		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		page := r.URL.Query().Get("page")
		count := pages[page]
		items := make([]map[string]any, 0, count)
		for i := 0; i < count; i++ {
			items = append(items, map[string]any{"id": fmt.Sprintf("p-%s-%d", page, i)})
		}

		payload := map[string]any{"data": items}
		switch page {
		case "":
			payload["links"] = map[string]any{"next": srv.URL + "/products?page=2"}
		case "2":
			payload["links"] = map[string]any{"next": srv.URL + "/products?page=3"}
		default:
			payload["links"] = map[string]any{"next": nil}
		}
		json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, false)
	products, err := client.ListProducts(context.Background(), 200, false)
	require.NoError(t, err)

	assert.Len(t, products, 5)
	require.Len(t, requests, 3)
	assert.Contains(t, requests[0], "page_size=200")
	assert.Contains(t, requests[0], "deleted=false")
}

func TestListProductsEndpointSpecificArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"products": []map[string]any{{"id": "p1"}, {"id": "p2"}},
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, false)
	products, err := client.ListProducts(context.Background(), 50, false)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestListProductsFlattensNothing(t *testing.T) {
	// Nested supplier/brand refs survive the client untouched; flattening
	// is the engine's job before persistence.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{
				"id":       "p1",
				"supplier": map[string]any{"id": "s1", "name": "Acme Supply"},
			}},
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, false)
	products, err := client.ListProducts(context.Background(), 10, false)
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.NotNil(t, products[0].Supplier)
	assert.Equal(t, "s1", products[0].Supplier.ID)
	assert.Empty(t, products[0].SupplierID)
}

func TestListUpstreamErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, false)
	_, err := client.ListSuppliers(context.Background(), 200)
	require.Error(t, err)

	var upstream *apperrors.ErrUpstream
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusInternalServerError, upstream.Status)
	assert.Contains(t, upstream.Body, "boom")
}

func TestSupplierIDByNameTrimmedCaseInsensitive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5000", r.URL.Query().Get("page_size"))
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": "s1", "name": "  Acme Supply  "},
				{"id": "s2", "name": "Other"},
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, false)

	id, err := client.SupplierIDByName(context.Background(), "acme supply")
	require.NoError(t, err)
	assert.Equal(t, "s1", id)

	id, err = client.SupplierIDByName(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestCreateProductValidationFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"errors":{"supplier_code":"taken"}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, false)
	_, err := client.CreateProduct(context.Background(), domain.ProductDraft{
		Name:         "Widget",
		SupplierCode: "W-1",
	})
	require.Error(t, err)

	var validation *apperrors.ErrProductValidation
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "Widget", validation.ProductName)
	assert.Contains(t, validation.Body, "taken")
}

func TestCreateProductResponseShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"object", `{"data":{"id":"p-9"}}`, "p-9"},
		{"string array", `{"data":["p-10"]}`, "p-10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := newTestClient(t, srv.URL, false)
			id, err := client.CreateProduct(context.Background(), domain.ProductDraft{Name: "X", SupplierCode: "X-1"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestCreateBrandErrorStatusYieldsEmptyBrand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"duplicate"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, false)
	brand, err := client.CreateBrand(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Empty(t, brand.ID)
}

func TestDryRunCreatesSyntheticIDsWithoutNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected network call in dry run: %s %s", r.Method, r.URL)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, true)
	ctx := context.Background()

	sup, err := client.CreateSupplier(ctx, "Acme Supply", "")
	require.NoError(t, err)
	assert.Equal(t, "dry_supplier_Acme Supply", sup.ID)
	assert.Equal(t, "Acme Supply", sup.Description)

	brand, err := client.CreateBrand(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, "dry_brand_Acme", brand.ID)

	productID, err := client.CreateProduct(ctx, domain.ProductDraft{Name: "Widget", SupplierCode: "W-1"})
	require.NoError(t, err)
	assert.Equal(t, "dry_product_W-1", productID)

	cons, err := client.CreateConsignment(ctx, domain.ConsignmentDraft{
		OutletID:     "o1",
		SupplierID:   "s1",
		SupplierName: "Acme Supply",
		OrderNumber:  "F-100",
	})
	require.NoError(t, err)
	assert.Equal(t, "dry_consignment_id", cons.ID)
	assert.Equal(t, domain.ConsignmentTypeSupplier, cons.Type)
	assert.Equal(t, domain.ConsignmentStatusOpen, cons.Status)

	results, err := client.AddConsignmentProducts(ctx, cons.ID, []domain.LineItem{
		{ProductID: "p1", Count: 2},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "p1", results[0]["product_id"])
}

func TestAddConsignmentProductsSkipsRejectedItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var li domain.LineItem
		if err := json.NewDecoder(r.Body).Decode(&li); err != nil {
			t.Errorf("failed to decode line item: %v", err)
		}
		if li.ProductID == "bad" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"no"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"product_id": li.ProductID, "count": li.Count})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, false)
	results, err := client.AddConsignmentProducts(context.Background(), "c1", []domain.LineItem{
		{ProductID: "good", Count: 1},
		{ProductID: "bad", Count: 2},
		{ProductID: "good2", Count: 3},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "good", results[0]["product_id"])
	assert.Equal(t, "good2", results[1]["product_id"])
}

func TestConsignmentPayload(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.Write([]byte(`{"data":{"id":"c1"}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, false)
	cons, err := client.CreateConsignment(context.Background(), domain.ConsignmentDraft{
		OutletID:     "o1",
		SupplierID:   "s1",
		SupplierName: "Acme Supply",
		OrderNumber:  "F-100",
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", cons.ID)
	assert.Equal(t, "Faire Stock Order - Acme Supply", payload["name"])
	assert.Equal(t, "SUPPLIER", payload["type"])
	assert.Equal(t, "OPEN", payload["status"])
	assert.Equal(t, "o1", payload["outlet_id"])
	assert.Equal(t, "F-100", payload["supplier_invoice"])
}

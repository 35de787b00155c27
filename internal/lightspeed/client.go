package lightspeed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lnmn249/faire-lightspeed-lite/internal/domain"
	apperrors "github.com/lnmn249/faire-lightspeed-lite/pkg/errors"
)

const (
	lookupPageSize = 5000
	searchPageSize = 10000
	maxLoggedBody  = 1000
)

// Config holds the X-Series client settings. DryRun is explicit state
// threaded through the constructor: when set, mutating calls make no
// network request and return synthetic ids shaped like real ones.
type Config struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	DryRun    bool
	Timeout   time.Duration
}

// Client talks to the Lightspeed X-Series API
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	dryRun     bool
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new X-Series client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "bwp-inventory/1.0 (faire-lightspeed-lite)"
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		userAgent:  userAgent,
		dryRun:     cfg.DryRun,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// DryRun reports whether mutating calls are skipped
func (c *Client) DryRun() bool {
	return c.dryRun
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
}

// logResponse captures the diagnostic context for any error status before
// the error is surfaced
func (c *Client) logResponse(method, reqURL string, resp *http.Response, body []byte, payloadKeys []string) {
	if resp.StatusCode >= 400 {
		c.logger.Error("Lightspeed request failed",
			zap.String("method", method),
			zap.String("url", reqURL),
			zap.Int("status", resp.StatusCode),
			zap.Strings("payload_keys", payloadKeys),
			zap.Any("headers", resp.Header),
			zap.String("body", truncate(string(body), maxLoggedBody)),
		)
		return
	}
	c.logger.Info("Lightspeed request",
		zap.String("method", method),
		zap.String("url", reqURL),
		zap.Int("status", resp.StatusCode),
	)
}

// doGet performs a GET and returns status plus the full body. Error
// statuses are logged here; translating them is up to the caller.
func (c *Client) doGet(ctx context.Context, reqURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	c.logResponse(http.MethodGet, reqURL, resp, body, nil)
	return resp.StatusCode, body, nil
}

// doPost marshals payload as JSON and performs a POST
func (c *Client) doPost(ctx context.Context, reqURL string, payload any) (int, []byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	c.logResponse(http.MethodPost, reqURL, resp, body, payloadKeys(jsonData))
	return resp.StatusCode, body, nil
}

func (c *Client) upstreamErr(method, reqURL string, status int, body []byte) error {
	return &apperrors.ErrUpstream{
		Method: method,
		URL:    reqURL,
		Status: status,
		Body:   truncate(string(body), maxLoggedBody),
	}
}

// accumulate follows links.next until exhausted and returns every page's
// items as one ordered sequence. Callers never see pagination.
func (c *Client) accumulate(ctx context.Context, reqURL string) ([]json.RawMessage, error) {
	var out []json.RawMessage
	next := reqURL
	for next != "" {
		status, body, err := c.doGet(ctx, next)
		if err != nil {
			return nil, err
		}
		if status >= 400 {
			return nil, c.upstreamErr(http.MethodGet, next, status, body)
		}
		var page listEnvelope
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal page: %w", err)
		}
		out = append(out, page.items()...)
		next = page.nextLink()
	}
	return out, nil
}

// ListProducts pulls every non-deleted product (deleted=true widens the
// listing). The page size is caller-controlled and never clamped.
func (c *Client) ListProducts(ctx context.Context, pageSize int, includeDeleted bool) ([]domain.Product, error) {
	reqURL := fmt.Sprintf("%s/products?page_size=%d&deleted=%t", c.baseURL, pageSize, includeDeleted)
	raw, err := c.accumulate(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(raw))
	for _, r := range raw {
		var p domain.Product
		if err := json.Unmarshal(r, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal product: %w", err)
		}
		products = append(products, p)
	}
	c.logger.Info("Pulled products", zap.Int("count", len(products)), zap.Int("page_size", pageSize))
	return products, nil
}

// ListSuppliers pulls every supplier
func (c *Client) ListSuppliers(ctx context.Context, pageSize int) ([]domain.Supplier, error) {
	reqURL := fmt.Sprintf("%s/suppliers?page_size=%d", c.baseURL, pageSize)
	raw, err := c.accumulate(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	suppliers := make([]domain.Supplier, 0, len(raw))
	for _, r := range raw {
		var s domain.Supplier
		if err := json.Unmarshal(r, &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal supplier: %w", err)
		}
		suppliers = append(suppliers, s)
	}
	c.logger.Info("Pulled suppliers", zap.Int("count", len(suppliers)), zap.Int("page_size", pageSize))
	return suppliers, nil
}

// ListBrands pulls every brand
func (c *Client) ListBrands(ctx context.Context, pageSize int) ([]domain.Brand, error) {
	reqURL := fmt.Sprintf("%s/brands?page_size=%d", c.baseURL, pageSize)
	raw, err := c.accumulate(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	brands := make([]domain.Brand, 0, len(raw))
	for _, r := range raw {
		var b domain.Brand
		if err := json.Unmarshal(r, &b); err != nil {
			return nil, fmt.Errorf("failed to unmarshal brand: %w", err)
		}
		brands = append(brands, b)
	}
	c.logger.Info("Pulled brands", zap.Int("count", len(brands)), zap.Int("page_size", pageSize))
	return brands, nil
}

// SupplierIDByName looks a supplier up by case-insensitive, trimmed exact
// name match over one large page. Returns "" when no supplier matches.
func (c *Client) SupplierIDByName(ctx context.Context, name string) (string, error) {
	reqURL := fmt.Sprintf("%s/suppliers?%s", c.baseURL, url.Values{
		"page_size": {fmt.Sprintf("%d", lookupPageSize)},
	}.Encode())
	status, body, err := c.doGet(ctx, reqURL)
	if err != nil {
		return "", err
	}
	if status >= 400 {
		return "", c.upstreamErr(http.MethodGet, reqURL, status, body)
	}
	var env struct {
		Data []domain.Supplier `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("failed to unmarshal suppliers: %w", err)
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for _, s := range env.Data {
		if strings.ToLower(strings.TrimSpace(s.Name)) == want {
			return s.ID, nil
		}
	}
	return "", nil
}

// BrandIDByName is the brand counterpart of SupplierIDByName
func (c *Client) BrandIDByName(ctx context.Context, name string) (string, error) {
	reqURL := fmt.Sprintf("%s/brands?%s", c.baseURL, url.Values{
		"page_size": {fmt.Sprintf("%d", lookupPageSize)},
	}.Encode())
	status, body, err := c.doGet(ctx, reqURL)
	if err != nil {
		return "", err
	}
	if status >= 400 {
		return "", c.upstreamErr(http.MethodGet, reqURL, status, body)
	}
	var env struct {
		Data []domain.Brand `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("failed to unmarshal brands: %w", err)
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for _, b := range env.Data {
		if strings.ToLower(strings.TrimSpace(b.Name)) == want {
			return b.ID, nil
		}
	}
	return "", nil
}

// SearchProductsByBrand fetches the live product listing for one brand in
// a single oversized page. Rows stay dynamic maps: the CSV join selects
// its key column from whatever the listing actually carries.
func (c *Client) SearchProductsByBrand(ctx context.Context, brandID string) ([]map[string]any, error) {
	q := url.Values{
		"type":      {"products"},
		"brand_id":  {brandID},
		"page_size": {fmt.Sprintf("%d", searchPageSize)},
	}
	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, q.Encode())
	status, body, err := c.doGet(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, c.upstreamErr(http.MethodGet, reqURL, status, body)
	}
	var env struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search results: %w", err)
	}
	return env.Data, nil
}

// CreateSupplier creates a supplier; description defaults to the name
func (c *Client) CreateSupplier(ctx context.Context, name, description string) (*domain.Supplier, error) {
	if description == "" {
		description = name
	}
	payload := map[string]string{"name": name, "description": description}
	if c.dryRun {
		c.logger.Info("Dry run: would create supplier", zap.String("name", name))
		return &domain.Supplier{ID: "dry_supplier_" + name, Name: name, Description: description}, nil
	}
	reqURL := c.baseURL + "/suppliers"
	status, body, err := c.doPost(ctx, reqURL, payload)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, c.upstreamErr(http.MethodPost, reqURL, status, body)
	}
	var env struct {
		Data domain.Supplier `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal supplier: %w", err)
	}
	return &env.Data, nil
}

// CreateBrand creates a brand. An error status yields an empty brand, not
// an error: brand resolution is non-fatal downstream and the failure has
// already been logged.
func (c *Client) CreateBrand(ctx context.Context, name string) (*domain.Brand, error) {
	payload := map[string]string{"name": name}
	if c.dryRun {
		c.logger.Info("Dry run: would create brand", zap.String("name", name))
		return &domain.Brand{ID: "dry_brand_" + name, Name: name}, nil
	}
	reqURL := c.baseURL + "/brands"
	status, body, err := c.doPost(ctx, reqURL, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return &domain.Brand{}, nil
	}
	var env struct {
		Data domain.Brand `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal brand: %w", err)
	}
	return &env.Data, nil
}

// CreateProduct creates a product and returns its id. A 422 from the
// vendor is a validation failure surfaced as ErrProductValidation with the
// response body verbatim; it must never be swallowed or retried.
func (c *Client) CreateProduct(ctx context.Context, draft domain.ProductDraft) (string, error) {
	if c.dryRun {
		c.logger.Info("Dry run: would create product",
			zap.String("name", draft.Name),
			zap.String("supplier_code", draft.SupplierCode),
		)
		return "dry_product_" + draft.SupplierCode, nil
	}
	reqURL := c.baseURL + "/products"
	status, body, err := c.doPost(ctx, reqURL, draft)
	if err != nil {
		return "", err
	}
	if status == http.StatusUnprocessableEntity {
		return "", &apperrors.ErrProductValidation{ProductName: draft.Name, Body: string(body)}
	}
	if status >= 400 {
		return "", c.upstreamErr(http.MethodPost, reqURL, status, body)
	}
	return parseCreatedProductID(body)
}

// CreateConsignment opens a SUPPLIER/OPEN stock-order shell
func (c *Client) CreateConsignment(ctx context.Context, draft domain.ConsignmentDraft) (*domain.Consignment, error) {
	supplierLabel := draft.SupplierName
	if supplierLabel == "" {
		supplierLabel = draft.SupplierID
	}
	payload := map[string]string{
		"name":             "Faire Stock Order - " + supplierLabel,
		"outlet_id":        draft.OutletID,
		"type":             domain.ConsignmentTypeSupplier,
		"status":           domain.ConsignmentStatusOpen,
		"supplier_id":      draft.SupplierID,
		"supplier_invoice": draft.OrderNumber,
	}
	if c.dryRun {
		c.logger.Info("Dry run: would create consignment shell", zap.String("supplier_id", draft.SupplierID))
		return &domain.Consignment{
			ID:              "dry_consignment_id",
			Name:            payload["name"],
			OutletID:        draft.OutletID,
			Type:            domain.ConsignmentTypeSupplier,
			Status:          domain.ConsignmentStatusOpen,
			SupplierID:      draft.SupplierID,
			SupplierInvoice: draft.OrderNumber,
		}, nil
	}
	reqURL := c.baseURL + "/consignments"
	status, body, err := c.doPost(ctx, reqURL, payload)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, c.upstreamErr(http.MethodPost, reqURL, status, body)
	}
	var env struct {
		Data domain.Consignment `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal consignment: %w", err)
	}
	return &env.Data, nil
}

// AddConsignmentProducts posts each line item individually. Per-item
// failures are skipped, not retried and not fatal; only accepted items
// appear in the result.
func (c *Client) AddConsignmentProducts(ctx context.Context, consignmentID string, items []domain.LineItem) ([]map[string]any, error) {
	if c.dryRun {
		c.logger.Info("Dry run: would add products to consignment",
			zap.Int("count", len(items)),
			zap.String("consignment_id", consignmentID),
		)
		results := make([]map[string]any, 0, len(items))
		for _, li := range items {
			results = append(results, map[string]any{"product_id": li.ProductID, "count": li.Count})
		}
		return results, nil
	}

	reqURL := fmt.Sprintf("%s/consignments/%s/products", c.baseURL, consignmentID)
	results := make([]map[string]any, 0, len(items))
	for _, li := range items {
		status, body, err := c.doPost(ctx, reqURL, li)
		if err != nil {
			c.logger.Warn("Line item attachment failed, skipping",
				zap.String("product_id", li.ProductID), zap.Error(err))
			continue
		}
		if status != http.StatusOK && status != http.StatusCreated {
			continue
		}
		var res map[string]any
		if err := json.Unmarshal(body, &res); err != nil {
			c.logger.Warn("Unparseable attachment response, skipping",
				zap.String("product_id", li.ProductID), zap.Error(err))
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func payloadKeys(jsonData []byte) []string {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(jsonData, &m); err != nil {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

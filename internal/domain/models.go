package domain

// EntityRef is the nested id+name object the vendor embeds on product rows
type EntityRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product is one catalog product. The vendor returns supplier/brand as
// nested objects; Flatten decomposes them into the *_id/*_name scalars
// before the product is persisted, so matching never descends into nested
// structures.
type Product struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	SupplierCode string     `json:"supplier_code"`
	SupplierID   string     `json:"supplier_id,omitempty"`
	SupplierName string     `json:"supplier_name,omitempty"`
	BrandID      string     `json:"brand_id,omitempty"`
	BrandName    string     `json:"brand_name,omitempty"`
	DefaultCost  *float64   `json:"default_cost,omitempty"`
	Type         string     `json:"type,omitempty"`
	Supplier     *EntityRef `json:"supplier,omitempty"`
	Brand        *EntityRef `json:"brand,omitempty"`
}

// Flatten lifts the nested supplier/brand refs into the scalar fields and
// drops the refs. Idempotent: a product that is already flat is unchanged.
func (p *Product) Flatten() {
	if p.Supplier != nil {
		p.SupplierID = p.Supplier.ID
		p.SupplierName = p.Supplier.Name
		p.Supplier = nil
	}
	if p.Brand != nil {
		p.BrandID = p.Brand.ID
		p.BrandName = p.Brand.Name
		p.Brand = nil
	}
}

// FlattenProducts flattens every product in place
func FlattenProducts(products []Product) {
	for i := range products {
		products[i].Flatten()
	}
}

// Supplier represents a vendor-side supplier. Name is the natural lookup
// key when the id is unknown.
type Supplier struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Brand represents a vendor-side brand
type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CatalogSnapshot is the atomic unit written and read by the catalog store
type CatalogSnapshot struct {
	Products  []Product  `json:"products"`
	Suppliers []Supplier `json:"suppliers"`
	Brands    []Brand    `json:"brands"`
}

// EmptySnapshot returns a snapshot with non-nil, zero-length collections
func EmptySnapshot() *CatalogSnapshot {
	return &CatalogSnapshot{
		Products:  []Product{},
		Suppliers: []Supplier{},
		Brands:    []Brand{},
	}
}

// OrderLine is one externally sourced purchase-order row. product_id
// presence signals the row is already matched against the catalog.
type OrderLine struct {
	SupplierCode   string   `json:"supplier_code,omitempty"`
	SKU            string   `json:"sku,omitempty"`
	BrandName      string   `json:"brand_name,omitempty"`
	ProductName    string   `json:"product_name,omitempty"`
	ProductID      string   `json:"product_id,omitempty"`
	SupplierID     string   `json:"supplier_id,omitempty"`
	SupplierName   string   `json:"supplier_name,omitempty"`
	Quantity       int      `json:"quantity"`
	WholesalePrice *float64 `json:"wholesale_price,omitempty"`
	OrderNumber    string   `json:"order_number,omitempty"`
}

// LineItem is the unit attached to a consignment
type LineItem struct {
	ProductID string   `json:"product_id"`
	Count     int      `json:"count"`
	Cost      *float64 `json:"cost,omitempty"`
}

// ProductDraft is the creation payload for a missing product
type ProductDraft struct {
	Name         string   `json:"name"`
	SupplierCode string   `json:"supplier_code"`
	SupplierID   string   `json:"supplier_id"`
	Type         string   `json:"type"`
	BrandID      string   `json:"brand_id,omitempty"`
	DefaultCost  *float64 `json:"default_cost,omitempty"`
}

// ConsignmentDraft is the creation payload for a stock-order shell
type ConsignmentDraft struct {
	OutletID     string
	SupplierID   string
	SupplierName string
	OrderNumber  string
}

// Consignment is a vendor-side stock order container
type Consignment struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	OutletID        string `json:"outlet_id"`
	Type            string `json:"type"`
	Status          string `json:"status"`
	SupplierID      string `json:"supplier_id"`
	SupplierInvoice string `json:"supplier_invoice,omitempty"`
}

// MatchedLine is one preview row resolved against the catalog mirror
type MatchedLine struct {
	SKU         string `json:"sku"`
	BrandName   string `json:"brand_name"`
	Quantity    int    `json:"quantity"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	SupplierID  string `json:"supplier_id,omitempty"`
}

// MissingLine is one preview row with no catalog match
type MissingLine struct {
	SKU       string `json:"sku"`
	BrandName string `json:"brand_name"`
	Quantity  int    `json:"quantity"`
}

// PreviewResult partitions structured preview input
type PreviewResult struct {
	Matched []MatchedLine `json:"matched"`
	Missing []MissingLine `json:"missing"`
}

// CSVPreviewResult partitions tabular upload rows. Rows keep all their
// upload columns, so they stay maps rather than fixed structs.
type CSVPreviewResult struct {
	Matched []map[string]any `json:"matched"`
	Missing []map[string]any `json:"missing"`
}

// CreatedProduct records one product created during a submit
type CreatedProduct struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	SupplierCode string `json:"supplier_code,omitempty"`
}

// SubmitResult is the outcome of a submit workflow. Results may be a
// partial subset of the attempted line items: per-item attachment failures
// are excluded while the submit as a whole still succeeds.
type SubmitResult struct {
	OK              bool             `json:"ok"`
	ConsignmentID   string           `json:"consignment_id"`
	SupplierID      string           `json:"supplier_id"`
	SupplierName    string           `json:"supplier_name,omitempty"`
	BrandID         string           `json:"brand_id,omitempty"`
	CreatedProducts []CreatedProduct `json:"created_products"`
	LineCount       int              `json:"line_count"`
	Results         []map[string]any `json:"results"`
}

// LastRefresh carries both representations of the refresh timestamp
type LastRefresh struct {
	Epoch *int64  `json:"epoch"`
	ISO   *string `json:"iso"`
}

// RefreshResult is the outcome of a catalog refresh
type RefreshResult struct {
	OK          bool           `json:"ok"`
	Count       map[string]int `json:"count"`
	LastRefresh LastRefresh    `json:"last_refresh"`
}

package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/lnmn249/faire-lightspeed-lite/internal/domain"
	apperrors "github.com/lnmn249/faire-lightspeed-lite/pkg/errors"
)

// csvHeaderRename maps upload column headers to the row keys the rest of
// the workflow expects. SKU keeps its original header; the forced-blank
// lower-case "sku" field is reserved for later product creation.
var csvHeaderRename = map[string]string{
	"Order Number":    "order_number",
	"Brand Name":      "brand_name",
	"Product Name":    "product_name",
	"Quantity":        "quantity",
	"Wholesale Price": "wholesale_price",
}

// liveKeyCandidates is the ordered preference list for the join-key column
// of the live vendor listing. First present wins.
var liveKeyCandidates = []string{"supplier_code", "sku", "SKU", "code"}

// PreviewCSV reconciles a tabular upload against the vendor's live
// listing for the upload's (first) brand. An unresolvable brand, an empty
// live listing or a missing join key returns every row as missing rather
// than failing; malformed input is a client error.
func (s *OrderService) PreviewCSV(ctx context.Context, r io.Reader) (*domain.CSVPreviewResult, error) {
	rows, err := parseCSVRows(r)
	if err != nil {
		return nil, err
	}

	// Focus on the first brand present in the upload
	brand := ""
	for _, row := range rows {
		if b, _ := row["brand_name"].(string); strings.TrimSpace(b) != "" {
			brand = strings.TrimSpace(b)
			break
		}
	}
	if brand == "" {
		return allMissing(rows), nil
	}

	brandID, err := s.vendor.BrandIDByName(ctx, brand)
	if err != nil {
		return nil, err
	}
	if brandID == "" {
		s.logger.Info("Upload brand not found in vendor catalog", zap.String("brand", brand))
		return allMissing(rows), nil
	}

	live, err := s.vendor.SearchProductsByBrand(ctx, brandID)
	if err != nil {
		return nil, err
	}
	if len(live) == 0 {
		return allMissing(rows), nil
	}

	liveKey := ""
	for _, candidate := range liveKeyCandidates {
		for _, rec := range live {
			if _, ok := rec[candidate]; ok {
				liveKey = candidate
				break
			}
		}
		if liveKey != "" {
			break
		}
	}
	if liveKey == "" {
		s.logger.Warn("Live listing has no usable join key", zap.String("brand", brand))
		return allMissing(rows), nil
	}

	liveIndex := make(map[string]map[string]any, len(live))
	for _, rec := range live {
		k := strings.ToLower(stringify(rec[liveKey]))
		if k == "" {
			continue
		}
		if _, exists := liveIndex[k]; !exists {
			liveIndex[k] = rec
		}
	}

	// Left-join the upload's brand rows against the live listing on
	// lower-cased SKU
	result := &domain.CSVPreviewResult{
		Matched: []map[string]any{},
		Missing: []map[string]any{},
	}
	for _, row := range rows {
		rowBrand, _ := row["brand_name"].(string)
		if !strings.EqualFold(strings.TrimSpace(rowBrand), brand) {
			continue
		}
		key := strings.ToLower(stringify(row["SKU"]))
		if rec, ok := liveIndex[key]; ok && key != "" {
			result.Matched = append(result.Matched, mergeLiveRecord(row, rec))
		} else {
			missing := copyRow(row)
			// Blank vendor sku marks the row as needing a new product
			missing["sku"] = ""
			result.Missing = append(result.Missing, missing)
		}
	}
	return result, nil
}

// parseCSVRows reads the upload, validates required columns and returns
// one map per data row with renamed keys
func parseCSVRows(r io.Reader) ([]map[string]any, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &apperrors.ErrValidation{Message: fmt.Sprintf("unreadable CSV: %v", err)}
	}
	if len(records) == 0 {
		return nil, &apperrors.ErrValidation{Message: "CSV is empty"}
	}

	header := records[0]
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}
	for _, required := range []string{"SKU", "Brand Name", "Quantity", "Wholesale Price"} {
		if !present[required] {
			return nil, &apperrors.ErrValidation{Message: "CSV must include: SKU, Brand Name, Quantity"}
		}
	}

	rows := make([]map[string]any, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]any, len(header))
		for i, h := range header {
			name := strings.TrimSpace(h)
			if renamed, ok := csvHeaderRename[name]; ok {
				name = renamed
			}
			value := ""
			if i < len(record) {
				value = record[i]
			}
			row[name] = value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// allMissing returns every row as missing with the vendor sku blanked so
// a later creation step is unambiguous about which rows need new products
func allMissing(rows []map[string]any) *domain.CSVPreviewResult {
	missing := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out := copyRow(row)
		out["sku"] = ""
		missing = append(missing, out)
	}
	return &domain.CSVPreviewResult{Matched: []map[string]any{}, Missing: missing}
}

// mergeLiveRecord copies the upload row and folds in the live record's
// fields, suffixing colliding names with _ls so the upload's values win
func mergeLiveRecord(row map[string]any, rec map[string]any) map[string]any {
	out := copyRow(row)
	for k, v := range rec {
		if _, exists := out[k]; exists {
			out[k+"_ls"] = v
		} else {
			out[k] = v
		}
	}
	return out
}

func copyRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row)+1)
	for k, v := range row {
		out[k] = v
	}
	return out
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

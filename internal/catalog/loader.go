package catalog

import (
	"bytes"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/actuallystonmai/catalog-recommender/internal/domain"
)

// LoadFile reads a catalog file. The file holds either a JSON array of
// products or an object with a "products" array.
func LoadFile(path string) ([]*domain.Product, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	products, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", path, err)
	}
	return products, nil
}

// Decode parses catalog JSON, rejecting records without a price.
func Decode(raw []byte) ([]*domain.Product, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, domain.ErrEmptyCatalog
	}

	var records []json.RawMessage
	if raw[0] == '{' {
		var wrapped struct {
			Products []json.RawMessage `json:"products"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		records = wrapped.Products
	} else if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.ErrEmptyCatalog
	}

	products := make([]*domain.Product, 0, len(records))
	for i, rec := range records {
		var probe struct {
			Price *float64 `json:"price"`
		}
		if err := json.Unmarshal(rec, &probe); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if probe.Price == nil {
			return nil, fmt.Errorf("record %d: missing price: %w", i, domain.ErrInvalidProduct)
		}
		var p domain.Product
		if err := json.Unmarshal(rec, &p); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		products = append(products, &p)
	}
	return products, nil
}

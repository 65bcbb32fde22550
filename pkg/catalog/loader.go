package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// ErrInvalidCatalog is returned when catalog data cannot be used.
var ErrInvalidCatalog = errors.New("invalid catalog data")

// file is the on-disk layout of the device database.
type file struct {
	Version     string                                `json:"version"`
	LastUpdated string                                `json:"last_updated"`
	Brands      map[string]map[string]json.RawMessage `json:"brands"`
}

// Parse decodes a device database document. A document without a "brands"
// object is rejected. Years that are not positive whole numbers are skipped.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if f.Brands == nil {
		return nil, fmt.Errorf("%w: missing brands", ErrInvalidCatalog)
	}

	brands := make(map[string]map[string]int, len(f.Brands))
	for brand, models := range f.Brands {
		m := make(map[string]int, len(models))
		for model, raw := range models {
			if year, ok := parseYear(raw); ok {
				m[model] = year
			}
		}
		brands[brand] = m
	}

	c := New(brands)
	c.version = f.Version
	c.lastUpdated = f.LastUpdated
	return c, nil
}

// LoadFile reads and parses the device database at path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return c, nil
}

func parseYear(raw json.RawMessage) (int, bool) {
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	if v <= 0 || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Catalog maps brand -> model -> manufacturing year. A Catalog is never
// mutated after construction; reloading builds a new one.
type Catalog struct {
	version     string
	lastUpdated string
	brands      map[string]map[string]int
}

// New builds a catalog from a brand/model/year mapping. Entries with an empty
// brand, empty model or a non-positive year are skipped.
func New(brands map[string]map[string]int) *Catalog {
	c := &Catalog{brands: make(map[string]map[string]int, len(brands))}
	for brand, models := range brands {
		if brand == "" {
			continue
		}
		m := make(map[string]int, len(models))
		for model, year := range models {
			if model == "" || year <= 0 {
				continue
			}
			m[model] = year
		}
		c.brands[brand] = m
	}
	return c
}

// Empty returns a catalog in which every lookup misses.
func Empty() *Catalog {
	return &Catalog{brands: map[string]map[string]int{}}
}

// Lookup returns the manufacturing year of an exact (case-sensitive) brand and
// model match. A nil or empty catalog always misses.
func (c *Catalog) Lookup(brand, model string) (int, bool) {
	if c == nil || brand == "" || model == "" {
		return 0, false
	}
	models, ok := c.brands[brand]
	if !ok {
		return 0, false
	}
	year, ok := models[model]
	return year, ok
}

// Brands returns the brand names containing filter, ignoring case, sorted.
// An empty filter matches every brand.
func (c *Catalog) Brands(filter string) []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.brands))
	for brand := range c.brands {
		names = append(names, brand)
	}
	return filterContains(names, filter)
}

// Models returns the model names of brand containing filter, ignoring case,
// sorted. The brand itself must match exactly.
func (c *Catalog) Models(brand, filter string) []string {
	if c == nil || brand == "" {
		return nil
	}
	models, ok := c.brands[brand]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(models))
	for model := range models {
		names = append(names, model)
	}
	return filterContains(names, filter)
}

// BrandCount returns the number of brands.
func (c *Catalog) BrandCount() int {
	if c == nil {
		return 0
	}
	return len(c.brands)
}

// ModelCount returns the number of (brand, model) records.
func (c *Catalog) ModelCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, models := range c.brands {
		n += len(models)
	}
	return n
}

// Version returns the version string of the loaded file, if any.
func (c *Catalog) Version() string {
	if c == nil {
		return ""
	}
	return c.version
}

// LastUpdated returns the last_updated string of the loaded file, if any.
func (c *Catalog) LastUpdated() string {
	if c == nil {
		return ""
	}
	return c.lastUpdated
}

func filterContains(names []string, filter string) []string {
	fold := cases.Fold()
	needle := fold.String(filter)

	var out []string
	for _, name := range names {
		if strings.Contains(fold.String(name), needle) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

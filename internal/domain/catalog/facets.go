package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SortKey selects the ordering applied after filtering.
type SortKey string

const (
	// SortFeatured keeps the catalog's insertion order (the default).
	SortFeatured SortKey = "featured"
	// SortPriceAsc orders by unit price, lowest first.
	SortPriceAsc SortKey = "price-low-high"
	// SortPriceDesc orders by unit price, highest first.
	SortPriceDesc SortKey = "price-high-low"
	// SortRating orders by rating, highest first.
	SortRating SortKey = "rating"
	// SortNewest orders by creation time, most recent first.
	SortNewest SortKey = "newest"
)

// ParseSortKey maps a raw string to a SortKey, falling back to SortFeatured
// for unknown values.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortPriceAsc, SortPriceDesc, SortRating, SortNewest:
		return SortKey(s)
	default:
		return SortFeatured
	}
}

// Facets holds one filter constraint per axis. A zero-value field means
// "no constraint on this axis": nil price bounds are unbounded, empty sets
// match everything, false flags are not requested.
//
// Axes compose with AND; values within a multi-valued axis compose with OR.
type Facets struct {
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Categories []string
	Colors     []string
	Sizes      []string
	Featured   bool
	Trending   bool
	NewArrival bool
	Query      string
}

// Match reports whether p satisfies every constrained axis.
func (f Facets) Match(p Product) bool {
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if len(f.Categories) > 0 && !contains(f.Categories, p.Category) {
		return false
	}
	if len(f.Colors) > 0 && !intersects(p.Colors, f.Colors) {
		return false
	}
	if len(f.Sizes) > 0 && !intersects(p.Sizes, f.Sizes) {
		return false
	}
	if f.Featured && !p.Featured {
		return false
	}
	if f.Trending && !p.Trending {
		return false
	}
	if f.NewArrival && !p.NewArrival {
		return false
	}
	if f.Query != "" && !matchQuery(p, f.Query) {
		return false
	}
	return true
}

// matchQuery reports whether the query is a case-insensitive substring of the
// product's name, description, category, or subcategory.
func matchQuery(p Product, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q) ||
		strings.Contains(strings.ToLower(p.Category), q) ||
		strings.Contains(strings.ToLower(p.Subcategory), q)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// intersects reports whether have and want share at least one value.
func intersects(have, want []string) bool {
	for _, h := range have {
		if contains(want, h) {
			return true
		}
	}
	return false
}

package catalog

import "sort"

// FilterAndSort returns the products matching the given facets, ordered by
// the sort key. It is a pure function: the input slice is never mutated, and
// sorting is stable so products with equal keys keep their catalog order.
//
// Malformed facets are handled permissively. An inverted price range
// (min > max) matches nothing as a natural consequence of the bound checks.
func FilterAndSort(products []Product, facets Facets, key SortKey) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if facets.Match(p) {
			out = append(out, p)
		}
	}

	switch key {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Price.LessThan(out[j].Price)
		})
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Price.GreaterThan(out[j].Price)
		})
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Rating > out[j].Rating
		})
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}

	return out
}

// Categories returns the distinct categories present in the given products,
// in first-seen order. Used to build the filter sidebar.
func Categories(products []Product) []string {
	return distinct(products, func(p Product) []string {
		return []string{p.Category}
	})
}

// Colors returns the distinct colors available across the given products.
func Colors(products []Product) []string {
	return distinct(products, func(p Product) []string { return p.Colors })
}

// Sizes returns the distinct sizes available across the given products.
func Sizes(products []Product) []string {
	return distinct(products, func(p Product) []string { return p.Sizes })
}

func distinct(products []Product, get func(Product) []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		for _, v := range get(p) {
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

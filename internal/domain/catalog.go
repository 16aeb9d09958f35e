package domain

import "github.com/cespare/xxhash/v2"

// CategoryInfo describes a catalog category as returned by the categories endpoint
type CategoryInfo struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CategoryItem groups the products fetched for one category.
// A CategoryItem is never changed in place; updates build a new value.
type CategoryItem struct {
	ID       uint64        `json:"id"`
	Slug     string        `json:"slug"`
	Name     string        `json:"name"`
	Products []ProductItem `json:"products"`
}

// CategoryID derives a stable identifier from a category slug
func CategoryID(slug string) uint64 {
	return xxhash.Sum64String(slug)
}

// NewCategoryItem builds a category group for info, dropping products whose id was already seen
func NewCategoryItem(info CategoryInfo, products []ProductItem) CategoryItem {
	seen := make(map[int]struct{}, len(products))
	unique := make([]ProductItem, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		unique = append(unique, p)
	}

	return CategoryItem{
		ID:       CategoryID(info.Slug),
		Slug:     info.Slug,
		Name:     info.Name,
		Products: unique,
	}
}

// WithProducts returns a copy of c holding products
func (c CategoryItem) WithProducts(products []ProductItem) CategoryItem {
	c.Products = products
	return c
}

// CategoryFailure records a category whose products could not be fetched
type CategoryFailure struct {
	Slug string
	Name string
	Err  error
}

// CatalogResult is the outcome of a partial-success aggregation
type CatalogResult struct {
	Categories []CategoryItem
	Failures   []CategoryFailure
}

package state

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"product/catalog/internal/domain"
)

// FavoriteSet holds favorite product ids
type FavoriteSet map[int]struct{}

// NewFavoriteSet builds a set from ids
func NewFavoriteSet(ids ...int) FavoriteSet {
	s := make(FavoriteSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s FavoriteSet) Contains(id int) bool {
	_, ok := s[id]
	return ok
}

func (s FavoriteSet) Clone() FavoriteSet {
	c := make(FavoriteSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// IDs returns the members in ascending order
func (s FavoriteSet) IDs() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Filter keeps the products whose title contains searchText, ignoring case.
// Categories left without products are dropped. An empty searchText returns
// categories as is.
func Filter(categories []domain.CategoryItem, searchText string) []domain.CategoryItem {
	if searchText == "" {
		return categories
	}

	fold := cases.Fold()
	needle := fold.String(searchText)

	filtered := make([]domain.CategoryItem, 0, len(categories))
	for _, category := range categories {
		var matches []domain.ProductItem
		for _, p := range category.Products {
			if strings.Contains(fold.String(p.Title), needle) {
				matches = append(matches, p)
			}
		}
		if len(matches) == 0 {
			continue
		}
		filtered = append(filtered, category.WithProducts(matches))
	}

	return filtered
}

// ToggleFavorite flips productID in a copy of favorites and returns categories
// rebuilt with every matching product's flag set to the new membership.
func ToggleFavorite(categories []domain.CategoryItem, favorites FavoriteSet, productID int) ([]domain.CategoryItem, FavoriteSet) {
	next := favorites.Clone()
	if next.Contains(productID) {
		delete(next, productID)
	} else {
		next[productID] = struct{}{}
	}

	favorite := next.Contains(productID)
	updated := make([]domain.CategoryItem, 0, len(categories))
	for _, category := range categories {
		products := make([]domain.ProductItem, len(category.Products))
		for i, p := range category.Products {
			if p.ID == productID {
				p = p.WithFavorite(favorite)
			}
			products[i] = p
		}
		updated = append(updated, category.WithProducts(products))
	}

	return updated, next
}

// ApplyFavorites stamps each product's favorite flag from favorites
func ApplyFavorites(categories []domain.CategoryItem, favorites FavoriteSet) []domain.CategoryItem {
	updated := make([]domain.CategoryItem, 0, len(categories))
	for _, category := range categories {
		products := make([]domain.ProductItem, len(category.Products))
		for i, p := range category.Products {
			products[i] = p.WithFavorite(favorites.Contains(p.ID))
		}
		updated = append(updated, category.WithProducts(products))
	}
	return updated
}

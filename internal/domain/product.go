package domain

// UnknownBrand is used when the catalog omits a product's brand
const UnknownBrand = "Unknown"

// ProductItem is a normalized product ready for display
type ProductItem struct {
	ID         int     `json:"id"`
	Title      string  `json:"title"`
	Price      float64 `json:"price"`
	Brand      string  `json:"brand"`
	Thumbnail  string  `json:"thumbnail"`
	Category   string  `json:"category"`
	IsFavorite bool    `json:"is_favorite"`
}

// ToggledFavorite returns a copy of p with the favorite flag flipped
func (p ProductItem) ToggledFavorite() ProductItem {
	p.IsFavorite = !p.IsFavorite
	return p
}

// WithFavorite returns a copy of p with the favorite flag set to favorite
func (p ProductItem) WithFavorite(favorite bool) ProductItem {
	p.IsFavorite = favorite
	return p
}

// Product is a raw product record from the category products endpoint
type Product struct {
	ID        int     `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Brand     *string `json:"brand,omitempty"`
	Thumbnail *string `json:"thumbnail,omitempty"`
	Category  string  `json:"category"`
	Stock     *int    `json:"stock,omitempty"`
}

// ProductResponse is the envelope returned by the category products endpoint
type ProductResponse struct {
	Products []Product `json:"products"`
	Total    *int      `json:"total,omitempty"`
	Skip     *int      `json:"skip,omitempty"`
	Limit    *int      `json:"limit,omitempty"`
}

// Item normalizes a raw product, substituting defaults for absent fields
func (p Product) Item() ProductItem {
	brand := UnknownBrand
	if p.Brand != nil {
		brand = *p.Brand
	}

	thumbnail := ""
	if p.Thumbnail != nil {
		thumbnail = *p.Thumbnail
	}

	return ProductItem{
		ID:        p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Brand:     brand,
		Thumbnail: thumbnail,
		Category:  p.Category,
	}
}

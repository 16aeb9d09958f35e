package state

import (
	"testing"

	"product/catalog/internal/domain"
)

func smartphones() domain.CategoryItem {
	return domain.CategoryItem{
		ID:   203,
		Slug: "smartphones",
		Name: "Smartphones",
		Products: []domain.ProductItem{
			{ID: 3, Title: "Galaxy S22", Price: 899, Brand: "Samsung", Category: "smartphones"},
			{ID: 4, Title: "iPhone 15", Price: 1099, Brand: "Apple", Category: "smartphones"},
		},
	}
}

func laptops() domain.CategoryItem {
	return domain.CategoryItem{
		ID:   202,
		Slug: "laptops",
		Name: "Laptops",
		Products: []domain.ProductItem{
			{ID: 2, Title: "MacBook Pro", Price: 1999, Brand: "Apple", Category: "laptops"},
			{ID: 5, Title: "ThinkPad", Price: 1299, Brand: "Lenovo", Category: "laptops"},
		},
	}
}

func TestFilter_EmptySearchReturnsInput(t *testing.T) {
	categories := []domain.CategoryItem{laptops(), smartphones()}

	got := Filter(categories, "")
	if len(got) != 2 || &got[0] != &categories[0] {
		t.Fatal("Filter(categories, \"\") did not return the input unchanged")
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name       string
		search     string
		wantNames  []string
		wantTitles []string
	}{
		{name: "single match", search: "iPhone", wantNames: []string{"Smartphones"}, wantTitles: []string{"iPhone 15"}},
		{name: "case insensitive", search: "MACBOOK", wantNames: []string{"Laptops"}, wantTitles: []string{"MacBook Pro"}},
		{name: "substring across categories", search: "a", wantNames: []string{"Laptops", "Smartphones"}, wantTitles: []string{"MacBook Pro", "ThinkPad", "Galaxy S22"}},
		{name: "no match", search: "Surface", wantNames: nil, wantTitles: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter([]domain.CategoryItem{laptops(), smartphones()}, tt.search)

			var names, titles []string
			for _, c := range got {
				if len(c.Products) == 0 {
					t.Fatalf("Filter(%q) returned empty category %s", tt.search, c.Name)
				}
				names = append(names, c.Name)
				for _, p := range c.Products {
					titles = append(titles, p.Title)
				}
			}
			if !equalStrings(names, tt.wantNames) {
				t.Fatalf("Filter(%q) categories = %v, want %v", tt.search, names, tt.wantNames)
			}
			if !equalStrings(titles, tt.wantTitles) {
				t.Fatalf("Filter(%q) titles = %v, want %v", tt.search, titles, tt.wantTitles)
			}
		})
	}
}

func TestFilter_UnicodeCaseFolding(t *testing.T) {
	categories := []domain.CategoryItem{{
		Name:     "Groceries",
		Products: []domain.ProductItem{{ID: 1, Title: "STRAßE Kaffee"}, {ID: 2, Title: "Äpfel"}},
	}}

	got := Filter(categories, "äPFEL")
	if len(got) != 1 || len(got[0].Products) != 1 || got[0].Products[0].ID != 2 {
		t.Fatalf("Filter(äPFEL) = %+v, want product 2", got)
	}
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	categories := []domain.CategoryItem{smartphones()}

	_ = Filter(categories, "Galaxy")
	if len(categories[0].Products) != 2 {
		t.Fatalf("input category has %d products after Filter, want 2", len(categories[0].Products))
	}
}

func TestToggleFavorite_AddsAndRemoves(t *testing.T) {
	categories := []domain.CategoryItem{smartphones()}
	favorites := NewFavoriteSet()

	toggled, favs := ToggleFavorite(categories, favorites, 4)
	if !favs.Contains(4) {
		t.Fatal("favorites does not contain 4 after first toggle")
	}
	if !toggled[0].Products[1].IsFavorite {
		t.Fatal("product 4 not marked favorite after first toggle")
	}
	if toggled[0].Products[0].IsFavorite {
		t.Fatal("product 3 marked favorite, want untouched")
	}
	if favorites.Contains(4) || categories[0].Products[1].IsFavorite {
		t.Fatal("ToggleFavorite modified its inputs")
	}

	restored, favs := ToggleFavorite(toggled, favs, 4)
	if favs.Contains(4) {
		t.Fatal("favorites still contains 4 after second toggle")
	}
	for i, p := range restored[0].Products {
		if p != categories[0].Products[i] {
			t.Fatalf("product %d = %+v after two toggles, want %+v", p.ID, p, categories[0].Products[i])
		}
	}
}

func TestToggleFavorite_MarksEveryMatchingProduct(t *testing.T) {
	shared := domain.ProductItem{ID: 9, Title: "Gift Card"}
	categories := []domain.CategoryItem{
		{Name: "A", Products: []domain.ProductItem{shared}},
		{Name: "B", Products: []domain.ProductItem{shared, {ID: 10, Title: "Other"}}},
	}

	got, _ := ToggleFavorite(categories, NewFavoriteSet(), 9)
	if !got[0].Products[0].IsFavorite || !got[1].Products[0].IsFavorite {
		t.Fatalf("ToggleFavorite(9) = %+v, want product 9 marked in every category", got)
	}
	if got[1].Products[1].IsFavorite {
		t.Fatal("product 10 marked favorite, want untouched")
	}
}

func TestToggleFavorite_SyncsStaleFlag(t *testing.T) {
	// A product whose flag disagrees with the set is brought in line with membership.
	categories := []domain.CategoryItem{{Name: "A", Products: []domain.ProductItem{{ID: 1, IsFavorite: true}}}}

	got, favs := ToggleFavorite(categories, NewFavoriteSet(), 1)
	if !favs.Contains(1) || !got[0].Products[0].IsFavorite {
		t.Fatalf("ToggleFavorite(1) = %+v, %v; want flag and set both favorite", got, favs.IDs())
	}
}

func TestApplyFavorites(t *testing.T) {
	categories := []domain.CategoryItem{laptops(), smartphones()}
	categories[0].Products[1].IsFavorite = true

	got := ApplyFavorites(categories, NewFavoriteSet(2, 4))

	want := map[int]bool{2: true, 5: false, 3: false, 4: true}
	for _, c := range got {
		for _, p := range c.Products {
			if p.IsFavorite != want[p.ID] {
				t.Fatalf("product %d IsFavorite = %v, want %v", p.ID, p.IsFavorite, want[p.ID])
			}
		}
	}
}

func TestFavoriteSet_IDsSorted(t *testing.T) {
	got := NewFavoriteSet(7, 1, 4).IDs()
	want := []int{1, 4, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IDs() = %v, want %v", got, want)
		}
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package state

import (
	"context"
	"errors"
	"sync"
	"testing"

	"product/catalog/internal/domain"
)

type stubLoader struct {
	mu     sync.Mutex
	result *domain.CatalogResult
	err    error
	calls  int
}

func (l *stubLoader) Load(ctx context.Context) (*domain.CatalogResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.result, nil
}

func TestStore_LoadSuccess(t *testing.T) {
	loader := &stubLoader{result: &domain.CatalogResult{Categories: []domain.CategoryItem{smartphones()}}}
	s := NewStore(loader)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	view := s.Snapshot()
	if view.Loading {
		t.Fatal("Loading = true after Load returned")
	}
	if view.ErrorMessage != "" {
		t.Fatalf("ErrorMessage = %q, want empty", view.ErrorMessage)
	}
	if len(view.Categories) != 1 || view.Categories[0].Name != "Smartphones" {
		t.Fatalf("Categories = %+v, want Smartphones", view.Categories)
	}
}

func TestStore_LoadFailureKeepsMessage(t *testing.T) {
	loader := &stubLoader{err: &domain.NetworkError{URL: "https://dummyjson.com/products/categories", StatusCode: 500}}
	s := NewStore(loader)

	err := s.Load(context.Background())

	var netErr *domain.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Load() error = %v, want *domain.NetworkError", err)
	}
	view := s.Snapshot()
	if view.Loading {
		t.Fatal("Loading = true after failed Load")
	}
	if view.ErrorMessage == "" {
		t.Fatal("ErrorMessage empty after failed Load")
	}
	if len(view.Categories) != 0 {
		t.Fatalf("Categories = %+v, want none", view.Categories)
	}
}

func TestStore_RetryClearsError(t *testing.T) {
	loader := &stubLoader{err: errors.New("offline")}
	s := NewStore(loader)
	_ = s.Load(context.Background())

	loader.err = nil
	loader.result = &domain.CatalogResult{Categories: []domain.CategoryItem{laptops()}}
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("retry Load() error = %v", err)
	}

	view := s.Snapshot()
	if view.ErrorMessage != "" || len(view.Categories) != 1 {
		t.Fatalf("view after retry = %+v, want categories and no error", view)
	}
	if loader.calls != 2 {
		t.Fatalf("loader calls = %d, want 2", loader.calls)
	}
}

func TestStore_FavoritesSurviveReload(t *testing.T) {
	loader := &stubLoader{result: &domain.CatalogResult{Categories: []domain.CategoryItem{smartphones()}}}
	s := NewStore(loader)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s.ToggleFavorite(4)

	// the reloaded data arrives with fresh, unflagged products
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("reload error = %v", err)
	}

	view := s.Snapshot()
	if len(view.FavoriteIDs) != 1 || view.FavoriteIDs[0] != 4 {
		t.Fatalf("FavoriteIDs = %v, want [4]", view.FavoriteIDs)
	}
	for _, p := range view.Categories[0].Products {
		if p.IsFavorite != (p.ID == 4) {
			t.Fatalf("product %d IsFavorite = %v after reload", p.ID, p.IsFavorite)
		}
	}
}

func TestStore_ToggleFavoriteTwiceRestores(t *testing.T) {
	loader := &stubLoader{result: &domain.CatalogResult{Categories: []domain.CategoryItem{laptops()}}}
	s := NewStore(loader)
	_ = s.Load(context.Background())

	s.ToggleFavorite(2)
	if view := s.Snapshot(); !view.Categories[0].Products[0].IsFavorite {
		t.Fatal("product 2 not favorite after toggle")
	}

	s.ToggleFavorite(2)
	view := s.Snapshot()
	if len(view.FavoriteIDs) != 0 {
		t.Fatalf("FavoriteIDs = %v, want none", view.FavoriteIDs)
	}
	if view.Categories[0].Products[0].IsFavorite {
		t.Fatal("product 2 still favorite after second toggle")
	}
}

func TestStore_SearchText(t *testing.T) {
	loader := &stubLoader{result: &domain.CatalogResult{Categories: []domain.CategoryItem{laptops(), smartphones()}}}
	s := NewStore(loader)
	_ = s.Load(context.Background())

	s.SetSearchText("iphone")
	view := s.Snapshot()
	if view.SearchText != "iphone" {
		t.Fatalf("SearchText = %q, want %q", view.SearchText, "iphone")
	}
	if len(view.Categories) != 1 || view.Categories[0].Products[0].Title != "iPhone 15" {
		t.Fatalf("Categories = %+v, want only iPhone 15", view.Categories)
	}

	s.SetSearchText("")
	if got := len(s.Snapshot().Categories); got != 2 {
		t.Fatalf("len(Categories) = %d after clearing search, want 2", got)
	}
}

func TestStore_KeepsPartialFailures(t *testing.T) {
	failure := domain.CategoryFailure{Slug: "tablets", Name: "Tablets", Err: errors.New("timeout")}
	loader := &stubLoader{result: &domain.CatalogResult{
		Categories: []domain.CategoryItem{laptops()},
		Failures:   []domain.CategoryFailure{failure},
	}}
	s := NewStore(loader)
	_ = s.Load(context.Background())

	view := s.Snapshot()
	if len(view.Failures) != 1 || view.Failures[0].Slug != "tablets" {
		t.Fatalf("Failures = %+v, want tablets", view.Failures)
	}
}

func TestStore_ConcurrentCommands(t *testing.T) {
	loader := &stubLoader{result: &domain.CatalogResult{Categories: []domain.CategoryItem{laptops(), smartphones()}}}
	s := NewStore(loader)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_ = s.Load(context.Background())
		}()
		go func() {
			defer wg.Done()
			s.ToggleFavorite(2)
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()

	// 20 toggles cancel out
	view := s.Snapshot()
	if len(view.FavoriteIDs) != 0 {
		t.Fatalf("FavoriteIDs = %v, want none after an even number of toggles", view.FavoriteIDs)
	}
	for _, c := range view.Categories {
		for _, p := range c.Products {
			if p.IsFavorite {
				t.Fatalf("product %d IsFavorite = true, want false", p.ID)
			}
		}
	}
	if view.Loading {
		t.Fatal("Loading = true after all loads returned")
	}
}

package state

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"product/catalog/internal/domain"
)

// Loader produces a fresh catalog
type Loader interface {
	Load(ctx context.Context) (*domain.CatalogResult, error)
}

// LoaderFunc adapts a function to Loader
type LoaderFunc func(ctx context.Context) (*domain.CatalogResult, error)

func (f LoaderFunc) Load(ctx context.Context) (*domain.CatalogResult, error) {
	return f(ctx)
}

// View is a read-only snapshot of the store
type View struct {
	Categories   []domain.CategoryItem // filtered by SearchText
	SearchText   string
	Loading      bool
	ErrorMessage string
	Failures     []domain.CategoryFailure
	FavoriteIDs  []int
}

// Store owns the loaded catalog, the favorites and the search text. All
// mutation goes through Load, ToggleFavorite and SetSearchText.
type Store struct {
	loader Loader

	mu           sync.RWMutex
	categories   []domain.CategoryItem
	favorites    FavoriteSet
	searchText   string
	loading      bool
	errorMessage string
	failures     []domain.CategoryFailure
	generation   uint64
}

func NewStore(loader Loader) *Store {
	return &Store{
		loader:    loader,
		favorites: make(FavoriteSet),
	}
}

// Load fetches a fresh catalog and replaces the current one. On failure the
// previous catalog is kept and the error message is recorded. When loads
// overlap, only the most recently started one is committed.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	generation := s.generation
	s.loading = true
	s.errorMessage = ""
	s.mu.Unlock()

	result, err := s.loader.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		log.Debugf("Discarding superseded load %d", generation)
		return err
	}
	s.loading = false

	if err != nil {
		s.errorMessage = err.Error()
		return err
	}

	s.categories = ApplyFavorites(result.Categories, s.favorites)
	s.failures = result.Failures
	return nil
}

// ToggleFavorite flips the favorite state of productID
func (s *Store) ToggleFavorite(productID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories, s.favorites = ToggleFavorite(s.categories, s.favorites, productID)
}

func (s *Store) SetSearchText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.searchText = text
}

// Snapshot returns the current view with the search filter applied
func (s *Store) Snapshot() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return View{
		Categories:   Filter(s.categories, s.searchText),
		SearchText:   s.searchText,
		Loading:      s.loading,
		ErrorMessage: s.errorMessage,
		Failures:     s.failures,
		FavoriteIDs:  s.favorites.IDs(),
	}
}

package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"product/catalog/internal/client"
	"product/catalog/internal/config"
	"product/catalog/internal/domain"
	"product/catalog/internal/imagecache"
	"product/catalog/internal/metrics"
	"product/catalog/internal/proxy"
	"product/catalog/internal/service"
	"product/catalog/internal/state"
)

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Fetcher    client.Fetcher
	Client     client.CatalogClient
	Aggregator *service.Aggregator
	Store      *state.Store
	Images     *imagecache.Cache
	Metrics    *metrics.Catalog

	// Out receives the rendered catalog
	Out io.Writer
}

// New creates a new container with all dependencies initialized
func New(cfg *config.Config) (*Container, error) {
	container := &Container{
		Config:  cfg,
		Metrics: metrics.New(),
		Out:     os.Stdout,
	}

	proxySupplier := proxy.NewSupplier(context.Background(), cfg.Catalog.Proxies, cfg.Catalog.BaseURL+"/products/categories")
	if len(cfg.Catalog.Proxies) > 0 && proxySupplier.Len() == 0 {
		return nil, fmt.Errorf("none of the %d configured proxies is reachable", len(cfg.Catalog.Proxies))
	}

	container.Fetcher = client.NewHTTPFetcher(cfg.Catalog, proxySupplier)
	container.Client = client.NewCatalogClient(cfg.Catalog.BaseURL, container.Fetcher)
	container.Aggregator = service.NewAggregator(container.Client, container.Metrics, cfg.Catalog.MaxConcurrency)
	container.Store = state.NewStore(container.loader())

	images, err := imagecache.New(container.Fetcher, container.Metrics, cfg.Images.CacheSize)
	if err != nil {
		return nil, err
	}
	container.Images = images

	return container, nil
}

func (c *Container) loader() state.Loader {
	if c.Config.Catalog.PartialResults {
		return state.LoaderFunc(c.Aggregator.FetchGroupedCatalogPartial)
	}

	return state.LoaderFunc(func(ctx context.Context) (*domain.CatalogResult, error) {
		categories, err := c.Aggregator.FetchGroupedCatalog(ctx)
		if err != nil {
			return nil, err
		}
		return &domain.CatalogResult{Categories: categories}, nil
	})
}

// Run loads the catalog, applies the configured view and renders it. The
// metrics listener, when configured, stays up until the catalog is rendered.
func (c *Container) Run(ctx context.Context) error {
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)

	if addr := c.Config.Metrics.ListenAddr; addr != "" {
		g.Go(func() error {
			return c.serveMetrics(gctx, addr)
		})
	}

	g.Go(func() error {
		defer stop()
		return c.present(gctx)
	})

	return g.Wait()
}

func (c *Container) present(ctx context.Context) error {
	log.Info("🔄 Loading products...")

	if err := c.Store.Load(ctx); err != nil {
		view := c.Store.Snapshot()
		fmt.Fprintf(c.Out, "Failed to load products\n%s\nRun again to retry.\n", view.ErrorMessage)
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	seen := make(map[int]struct{}, len(c.Config.View.Favorites))
	for _, id := range c.Config.View.Favorites {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		c.Store.ToggleFavorite(id)
	}
	c.Store.SetSearchText(c.Config.View.Search)

	view := c.Store.Snapshot()
	for _, f := range view.Failures {
		log.Warnf("⚠️ Category %s was not loaded: %v", f.Slug, f.Err)
	}

	if c.Config.Images.Prefetch {
		loaded := c.prefetchThumbnails(ctx, view.Categories)
		log.Infof("🖼️ Cached %d thumbnails", loaded)
	}

	return Render(c.Out, view)
}

// prefetchThumbnails warms the image cache for every visible product and
// returns how many thumbnails are available
func (c *Container) prefetchThumbnails(ctx context.Context, categories []domain.CategoryItem) int {
	g := new(errgroup.Group)
	g.SetLimit(max(1, c.Config.Images.PrefetchWorkers))

	results := make(chan bool, countProducts(categories))
	for _, category := range categories {
		for _, p := range category.Products {
			g.Go(func() error {
				_, ok := c.Images.Load(ctx, p.Thumbnail)
				results <- ok
				return nil
			})
		}
	}
	_ = g.Wait()
	close(results)

	loaded := 0
	for ok := range results {
		if ok {
			loaded++
		}
	}
	return loaded
}

func (c *Container) serveMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infof("📈 Serving metrics on %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics listener: %w", err)
	}
	return nil
}

func countProducts(categories []domain.CategoryItem) int {
	n := 0
	for _, c := range categories {
		n += len(c.Products)
	}
	return n
}

package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"product/catalog/internal/client"
	"product/catalog/internal/domain"
	"product/catalog/internal/metrics"
)

// Aggregator fetches every category's products and groups them. It keeps no
// state between calls, so one Aggregator may serve concurrent callers.
type Aggregator struct {
	client         client.CatalogClient
	metrics        *metrics.Catalog
	maxConcurrency int
}

// NewAggregator creates an Aggregator. maxConcurrency <= 0 fans out one
// request per category with no limit.
func NewAggregator(client client.CatalogClient, metrics *metrics.Catalog, maxConcurrency int) *Aggregator {
	return &Aggregator{
		client:         client,
		metrics:        metrics,
		maxConcurrency: maxConcurrency,
	}
}

// FetchGroupedCatalog returns all categories with their products, sorted by name.
// The first failing category aborts the whole call and cancels the requests
// still in flight; no partial result is returned.
func (a *Aggregator) FetchGroupedCatalog(ctx context.Context) (categories []domain.CategoryItem, err error) {
	started := time.Now()
	defer func() { a.metrics.ObserveAggregation(started, err) }()

	infos, err := a.categories(ctx)
	if err != nil {
		return nil, err
	}

	resultsChan := make(chan domain.CategoryItem, len(infos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.limit())

	for _, info := range infos {
		g.Go(func() error {
			item, err := a.fetchCategory(gctx, info)
			if err != nil {
				return fmt.Errorf("category %s: %w", info.Slug, err)
			}
			resultsChan <- item
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Errorf("❌ Catalog aggregation failed: %v", err)
		return nil, err
	}
	close(resultsChan)

	categories = make([]domain.CategoryItem, 0, len(infos))
	for item := range resultsChan {
		categories = append(categories, item)
	}
	sortByName(categories)

	log.Infof("✅ Fetched %d categories in %v", len(categories), time.Since(started).Round(time.Millisecond))
	return categories, nil
}

// FetchGroupedCatalogPartial is like FetchGroupedCatalog but keeps going when
// a category fails, reporting the failures next to the categories that loaded.
// A failure to fetch the category list still fails the call.
func (a *Aggregator) FetchGroupedCatalogPartial(ctx context.Context) (result *domain.CatalogResult, err error) {
	started := time.Now()
	defer func() { a.metrics.ObserveAggregation(started, err) }()

	infos, err := a.categories(ctx)
	if err != nil {
		return nil, err
	}

	type outcome struct {
		item    domain.CategoryItem
		failure *domain.CategoryFailure
	}
	outcomes := make([]outcome, len(infos))

	g := new(errgroup.Group)
	g.SetLimit(a.limit())

	for i, info := range infos {
		g.Go(func() error {
			item, err := a.fetchCategory(ctx, info)
			if err != nil {
				log.Warnf("⚠️ Skipping category %s: %v", info.Slug, err)
				outcomes[i].failure = &domain.CategoryFailure{Slug: info.Slug, Name: info.Name, Err: err}
				return nil
			}
			outcomes[i].item = item
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result = &domain.CatalogResult{
		Categories: make([]domain.CategoryItem, 0, len(infos)),
	}
	for _, o := range outcomes {
		if o.failure != nil {
			result.Failures = append(result.Failures, *o.failure)
			continue
		}
		result.Categories = append(result.Categories, o.item)
	}
	sortByName(result.Categories)

	log.Infof("✅ Fetched %d categories, %d failed, in %v",
		len(result.Categories), len(result.Failures), time.Since(started).Round(time.Millisecond))
	return result, nil
}

// categories fetches the category list, dropping repeated slugs
func (a *Aggregator) categories(ctx context.Context) ([]domain.CategoryInfo, error) {
	infos, err := a.client.GetCategories(ctx)
	if err != nil {
		log.Errorf("❌ Failed to fetch category list: %v", err)
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	seen := make(map[string]struct{}, len(infos))
	unique := make([]domain.CategoryInfo, 0, len(infos))
	for _, info := range infos {
		if _, ok := seen[info.Slug]; ok {
			log.Debugf("Ignoring repeated category %s", info.Slug)
			continue
		}
		seen[info.Slug] = struct{}{}
		unique = append(unique, info)
	}

	log.Infof("🔄 Fetching products for %d categories", len(unique))
	return unique, nil
}

func (a *Aggregator) fetchCategory(ctx context.Context, info domain.CategoryInfo) (domain.CategoryItem, error) {
	products, err := a.client.GetCategoryProducts(ctx, info)
	a.metrics.ObserveCategoryFetch(err)
	if err != nil {
		return domain.CategoryItem{}, err
	}

	log.Debugf("Fetched %d products for %s", len(products), info.Slug)
	return domain.NewCategoryItem(info, products), nil
}

func (a *Aggregator) limit() int {
	if a.maxConcurrency <= 0 {
		return -1
	}
	return a.maxConcurrency
}

func sortByName(categories []domain.CategoryItem) {
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Name != categories[j].Name {
			return categories[i].Name < categories[j].Name
		}
		return categories[i].Slug < categories[j].Slug
	})
}

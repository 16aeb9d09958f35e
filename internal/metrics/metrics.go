package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"product/catalog/internal/domain"
)

// Outcome labels
const (
	OutcomeOK           = "ok"
	OutcomeNetworkError = "network_error"
	OutcomeDecodeError  = "decode_error"
	OutcomeInvalidURL   = "invalid_url"
	OutcomeCanceled     = "canceled"
	OutcomeOther        = "error"
)

// Catalog holds the client's Prometheus collectors. A nil *Catalog records nothing.
type Catalog struct {
	registry         *prometheus.Registry
	categoryFetches  *prometheus.CounterVec
	aggregations     *prometheus.CounterVec
	aggregationTime  prometheus.Histogram
	imageCacheLookup *prometheus.CounterVec
}

// New creates the collectors and registers them on a dedicated registry
func New() *Catalog {
	categoryFetches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_category_fetches_total",
			Help: "Category product fetches by outcome",
		},
		[]string{"outcome"},
	)

	aggregations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_aggregations_total",
			Help: "Grouped catalog aggregations by outcome",
		},
		[]string{"outcome"},
	)

	aggregationTime := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_aggregation_duration_seconds",
			Help:    "Duration of grouped catalog aggregations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	imageCacheLookup := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_image_cache_lookups_total",
			Help: "Image cache lookups by result",
		},
		[]string{"result"},
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(categoryFetches, aggregations, aggregationTime, imageCacheLookup)

	return &Catalog{
		registry:         registry,
		categoryFetches:  categoryFetches,
		aggregations:     aggregations,
		aggregationTime:  aggregationTime,
		imageCacheLookup: imageCacheLookup,
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *Catalog) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCategoryFetch counts one category fetch
func (m *Catalog) ObserveCategoryFetch(err error) {
	if m == nil {
		return
	}
	m.categoryFetches.WithLabelValues(Outcome(err)).Inc()
}

// ObserveAggregation counts one aggregation and records how long it took
func (m *Catalog) ObserveAggregation(started time.Time, err error) {
	if m == nil {
		return
	}
	m.aggregations.WithLabelValues(Outcome(err)).Inc()
	m.aggregationTime.Observe(time.Since(started).Seconds())
}

// ObserveImageLookup counts an image cache hit or miss
func (m *Catalog) ObserveImageLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.imageCacheLookup.WithLabelValues(result).Inc()
}

// Outcome maps an error to its metric label
func Outcome(err error) string {
	var (
		netErr     *domain.NetworkError
		decodeErr  *domain.DecodeError
		invalidErr *domain.InvalidURLError
	)

	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	case errors.As(err, &invalidErr):
		return OutcomeInvalidURL
	case errors.As(err, &decodeErr):
		return OutcomeDecodeError
	case errors.As(err, &netErr):
		return OutcomeNetworkError
	default:
		return OutcomeOther
	}
}

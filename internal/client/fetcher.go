package client

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"

	"product/catalog/internal/config"
	"product/catalog/internal/domain"
	"product/catalog/internal/proxy"
)

// Response is the raw result of a GET
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// IsSuccess reports whether the status code is 2xx
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// Fetcher returns the bytes and status behind a URL. Implementations must be
// safe for concurrent use. Transport failures and timeouts are returned as
// *domain.NetworkError; non-2xx responses are not errors at this level.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

type httpFetcher struct {
	rl         ratelimit.Limiter
	paced      bool
	timeout    time.Duration
	httpClient *resty.Client

	// one client per proxy; requests rotate through them via proxySupplier
	proxySupplier proxy.Supplier
	proxyClients  map[string]*resty.Client
}

// NewHTTPFetcher builds a Fetcher backed by resty. Each request gets its own
// timeout; there are no retries.
func NewHTTPFetcher(cfg config.CatalogConfig, proxySupplier proxy.Supplier) Fetcher {
	f := &httpFetcher{
		rl:         ratelimit.NewUnlimited(),
		timeout:    cfg.RequestTimeout(),
		httpClient: newRestyClient(),
	}

	if cfg.MaxRequestsPerSecond > 0 {
		f.rl = ratelimit.New(cfg.MaxRequestsPerSecond)
		f.paced = true
	}

	if proxySupplier != nil && proxySupplier.Len() > 0 {
		f.proxySupplier = proxySupplier
		f.proxyClients = make(map[string]*resty.Client, proxySupplier.Len())
		for range proxySupplier.Len() {
			proxyURL := proxySupplier.Get()
			f.proxyClients[proxyURL] = newRestyClient().SetProxy(proxyURL)
		}
		log.Infof("🔗 Rotating requests through %d proxies", len(f.proxyClients))
	}

	return f
}

func newRestyClient() *resty.Client {
	return resty.New().
		SetRetryCount(0).
		SetHeader("Accept", "application/json, image/*;q=0.9, */*;q=0.8").
		SetHeader("User-Agent", "product-catalog/1.0")
}

// client picks the next proxy's client, or the direct one without proxies
func (f *httpFetcher) client() *resty.Client {
	if f.proxySupplier == nil {
		return f.httpClient
	}
	if c, ok := f.proxyClients[f.proxySupplier.Get()]; ok {
		return c
	}
	return f.httpClient
}

// take waits for a rate limiter slot. ratelimit.Limiter.Take ignores
// contexts, so a cancelled caller stops waiting and leaves the slot to the
// background Take.
func (f *httpFetcher) take(ctx context.Context) error {
	if !f.paced {
		return ctx.Err()
	}

	taken := make(chan struct{})
	go func() {
		f.rl.Take()
		close(taken)
	}()

	select {
	case <-taken:
		return ctx.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *httpFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	if err := f.take(ctx); err != nil {
		return nil, &domain.NetworkError{URL: url, Err: err}
	}

	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	started := time.Now()
	resp, err := f.client().R().
		SetContext(reqCtx).
		Get(url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &domain.NetworkError{URL: url, Err: ctx.Err()}
		}
		if reqCtx.Err() != nil {
			return nil, &domain.NetworkError{URL: url, Err: reqCtx.Err()}
		}
		return nil, &domain.NetworkError{URL: url, Err: err}
	}

	log.WithFields(log.Fields{
		"url":     url,
		"status":  resp.StatusCode(),
		"elapsed": time.Since(started).Round(time.Millisecond),
	}).Debug("Fetched")

	return &Response{
		URL:         url,
		StatusCode:  resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Bytes(),
	}, nil
}

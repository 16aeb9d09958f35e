package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"product/catalog/internal/domain"
)

// CatalogClient exposes the catalog endpoints as typed calls
type CatalogClient interface {
	GetCategories(ctx context.Context) ([]domain.CategoryInfo, error)
	GetCategoryProducts(ctx context.Context, category domain.CategoryInfo) ([]domain.ProductItem, error)
}

type catalogClient struct {
	baseURL string
	fetcher Fetcher
}

func NewCatalogClient(baseURL string, fetcher Fetcher) CatalogClient {
	return &catalogClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: fetcher,
	}
}

func (c *catalogClient) GetCategories(ctx context.Context) ([]domain.CategoryInfo, error) {
	endpoint := c.baseURL + "/products/categories"

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var categories []domain.CategoryInfo
	if err := json.Unmarshal(body, &categories); err != nil {
		return nil, &domain.DecodeError{URL: endpoint, Err: err}
	}

	log.Debugf("Decoded %d categories", len(categories))
	return categories, nil
}

func (c *catalogClient) GetCategoryProducts(ctx context.Context, category domain.CategoryInfo) ([]domain.ProductItem, error) {
	endpoint, err := CategoryProductsURL(c.baseURL, category.Slug)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	products, err := decodeProducts(body)
	if err != nil {
		return nil, &domain.DecodeError{URL: endpoint, Err: err}
	}

	log.Debugf("Decoded %d products for %s", len(products), category.Slug)
	return products, nil
}

func (c *catalogClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	resp, err := c.fetcher.Fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	if !resp.IsSuccess() {
		return nil, &domain.NetworkError{
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Detail:     summarizeErrorBody(resp.ContentType, resp.Body),
		}
	}

	return resp.Body, nil
}

func decodeProducts(body []byte) ([]domain.ProductItem, error) {
	var envelope domain.ProductResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	if envelope.Products == nil {
		return nil, errors.New("missing products field")
	}

	products := make([]domain.ProductItem, 0, len(envelope.Products))
	for _, raw := range envelope.Products {
		if raw.Price < 0 {
			return nil, fmt.Errorf("product %d has negative price %v", raw.ID, raw.Price)
		}
		products = append(products, raw.Item())
	}

	return products, nil
}

// CategoryProductsURL builds the products URL for a category slug, percent-encoding
// it as one path segment. Empty slugs, dot segments and text that is not valid
// UTF-8 cannot address a single category and are rejected.
func CategoryProductsURL(baseURL, slug string) (string, error) {
	if err := validateSlug(slug); err != nil {
		return "", &domain.InvalidURLError{Slug: slug, Err: err}
	}

	raw := strings.TrimRight(baseURL, "/") + "/products/category/" + url.PathEscape(slug)
	if _, err := url.Parse(raw); err != nil {
		return "", &domain.InvalidURLError{Slug: slug, Err: err}
	}

	return raw, nil
}

func validateSlug(slug string) error {
	switch slug {
	case "":
		return errors.New("empty slug")
	case ".", "..":
		return errors.New("dot segment")
	}

	// encoding/json turns invalid UTF-8 into U+FFFD, so treat it as invalid too
	if !utf8.ValidString(slug) || strings.ContainsRune(slug, utf8.RuneError) {
		return errors.New("slug is not valid UTF-8")
	}
	return nil
}

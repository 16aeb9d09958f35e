package imagecache

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"

	"product/catalog/internal/client"
	"product/catalog/internal/metrics"
)

// Cache memoizes decoded thumbnails by URL, evicting the least recently used
// entry once full. It is safe for concurrent use.
type Cache struct {
	fetcher  client.Fetcher
	metrics  *metrics.Catalog
	images   *lru.Cache[string, image.Image]
	inflight singleflight.Group
}

func New(fetcher client.Fetcher, metrics *metrics.Catalog, size int) (*Cache, error) {
	images, err := lru.New[string, image.Image](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create image cache: %w", err)
	}

	return &Cache{
		fetcher: fetcher,
		metrics: metrics,
		images:  images,
	}, nil
}

// Load returns the image behind url, downloading it on first use. Failures
// are logged and reported as a missing image.
func (c *Cache) Load(ctx context.Context, url string) (image.Image, bool) {
	if url == "" {
		return nil, false
	}

	if img, ok := c.images.Get(url); ok {
		c.metrics.ObserveImageLookup(true)
		return img, true
	}
	c.metrics.ObserveImageLookup(false)

	// The download outlives any single caller; the fetcher timeout bounds it.
	shared := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(url, func() (interface{}, error) {
		if img, ok := c.images.Get(url); ok {
			return img, nil
		}

		img, err := c.download(shared, url)
		if err != nil {
			return nil, err
		}

		c.images.Add(url, img)
		return img, nil
	})

	select {
	case <-ctx.Done():
		log.Debugf("Stopped waiting for image %s: %v", url, ctx.Err())
		return nil, false
	case res := <-ch:
		if res.Err != nil {
			log.Warnf("⚠️ Failed to load image %s: %v", url, res.Err)
			return nil, false
		}
		return res.Val.(image.Image), true
	}
}

// Len returns the number of cached images
func (c *Cache) Len() int {
	return c.images.Len()
}

func (c *Cache) download(ctx context.Context, url string) (image.Image, error) {
	resp, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	img, format, err := image.Decode(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	log.Debugf("Decoded %s image %s (%dx%d)", format, url, img.Bounds().Dx(), img.Bounds().Dy())
	return img, nil
}

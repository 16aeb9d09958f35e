package proxy

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

const probeTimeout = 5 * time.Second

// Supplier hands out outbound proxy URLs in round-robin order
type Supplier interface {
	// Get returns the next proxy URL, or "" when none is available
	Get() string
	Len() int
}

type supplier struct {
	proxies []string
	current int
	mutex   sync.Mutex
}

// NewSupplier probes every proxy against probeURL and keeps the ones that answer
func NewSupplier(ctx context.Context, proxies []string, probeURL string) Supplier {
	if len(proxies) == 0 {
		return &supplier{}
	}

	log.Infof("🔄 Probing %d proxies against %s", len(proxies), probeURL)

	working := make([]bool, len(proxies))
	var wg sync.WaitGroup
	for i, proxyURL := range proxies {
		wg.Add(1)
		go func() {
			defer wg.Done()
			working[i] = probe(ctx, proxyURL, probeURL)
		}()
	}
	wg.Wait()

	valid := make([]string, 0, len(proxies))
	for i, ok := range working {
		if ok {
			valid = append(valid, proxies[i])
		}
	}

	log.Infof("✅ Proxy supplier ready with %d of %d proxies", len(valid), len(proxies))
	return &supplier{proxies: valid}
}

func (s *supplier) Get() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.proxies) == 0 {
		return ""
	}

	p := s.proxies[s.current]
	s.current = (s.current + 1) % len(s.proxies)
	return p
}

func (s *supplier) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.proxies)
}

func probe(ctx context.Context, proxyURL, probeURL string) bool {
	client := resty.New().
		SetTimeout(probeTimeout).
		SetRetryCount(0).
		SetProxy(proxyURL)

	resp, err := client.R().
		SetContext(ctx).
		Get(probeURL)
	if err != nil {
		log.Infof("❌ Proxy %s failed: %v", proxyURL, err)
		return false
	}
	if resp.IsError() {
		log.Infof("❌ Proxy %s answered %s", proxyURL, resp.Status())
		return false
	}

	log.Debugf("Proxy %s is working", proxyURL)
	return true
}

// Package links provides the rate-limited HTTP access shared by every source adapter.
package links

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/lueurxax/aggro-radar/internal/core/errors"
)

const (
	defaultFetchTimeoutSeconds = 30
	globalLimiterBurst         = 5
	maxRedirects               = 5
	maxBodySizeMB              = 5
	maxBodySizeBytes           = maxBodySizeMB * 1024 * 1024
	domainLimiterRate          = 1
	domainLimiterBurst         = 2
	wwwPrefix                  = "www."

	defaultUserAgent = "Mozilla/5.0 (compatible; AggroRadar/1.0)"
	defaultAccept    = "text/html,application/xhtml+xml,application/xml,application/json"
	defaultLanguage  = "ko-KR,ko;q=0.9,en-US;q=0.8"
)

// WebFetcher performs HTTP requests under a global and a per-domain rate limit.
type WebFetcher struct {
	client         *http.Client
	globalLimiter  *rate.Limiter
	domainLimiters map[string]*rate.Limiter
	mu             sync.RWMutex
	userAgent      string
}

// NewWebFetcher creates a fetcher allowing rps requests per second overall. A
// non-positive rps disables the global limit.
func NewWebFetcher(rps float64, timeout time.Duration) *WebFetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeoutSeconds * time.Second
	}

	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}

	f := &WebFetcher{
		globalLimiter:  rate.NewLimiter(limit, globalLimiterBurst),
		domainLimiters: make(map[string]*rate.Limiter),
		userAgent:      defaultUserAgent,
	}

	f.client = &http.Client{
		Timeout:   timeout,
		Transport: &limitedTransport{fetcher: f, base: http.DefaultTransport},
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errors.ErrTooManyRedirects
			}

			return nil
		},
	}

	return f
}

// Client returns an HTTP client whose requests wait on the fetcher's limiters.
// API SDKs that accept an *http.Client use it.
func (f *WebFetcher) Client() *http.Client {
	return f.client
}

// Fetch GETs rawURL and returns the body. Extra headers override the defaults.
func (f *WebFetcher) Fetch(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", defaultAccept)
	req.Header.Set("Accept-Language", defaultLanguage)

	for key, values := range header {
		req.Header.Del(key)

		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", errors.ErrHTTPStatusNotOK, resp.StatusCode)
	}

	// Limit to 5MB
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return body, nil
}

func (f *WebFetcher) wait(ctx context.Context, host string) error {
	if err := f.globalLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("global rate limiter wait: %w", err)
	}

	// Per-domain rate limit (1 req/sec per domain)
	if err := f.getDomainLimiter(normalizeDomain(host)).Wait(ctx); err != nil {
		return fmt.Errorf("domain rate limiter wait: %w", err)
	}

	return nil
}

func (f *WebFetcher) getDomainLimiter(domain string) *rate.Limiter {
	f.mu.RLock()
	limiter, exists := f.domainLimiters[domain]
	f.mu.RUnlock()

	if exists {
		return limiter
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// Double check
	if limiter, exists := f.domainLimiters[domain]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(domainLimiterRate, domainLimiterBurst)
	f.domainLimiters[domain] = limiter

	return limiter
}

func normalizeDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimPrefix(host, wwwPrefix)

	return host
}

type limitedTransport struct {
	fetcher *WebFetcher
	base    http.RoundTripper
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.fetcher.wait(req.Context(), req.URL.Host); err != nil {
		return nil, err
	}

	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.fetcher.userAgent)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("round trip: %w", err)
	}

	return resp, nil
}

package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
)

// maxResponseBytes limits the size of fetched page bodies.
const maxResponseBytes = 10 * 1024 * 1024 // 10 MB

// HTTPFetcher implements the Fetcher interface on net/http with bounded
// retries and exponential backoff. A single instance is safe for
// concurrent use; independent fetch calls share only the client's
// connection pool.
type HTTPFetcher struct {
	client *http.Client
	log    zerolog.Logger
	sleep  sleepFunc
}

// NewHTTPFetcher creates a new HTTPFetcher instance.
func NewHTTPFetcher(log zerolog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{},
		log:    log,
		sleep:  sleepContext,
	}
}

// Fetch implements the Fetcher interface. It validates the URL and
// options, then attempts the request up to opts.MaxRetries+1 times.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, opts Options) (string, error) {
	if opts.MaxRetries < 0 {
		return "", fmt.Errorf("max retries must be >= 0, got %d", opts.MaxRetries)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if !u.IsAbs() {
		return "", fmt.Errorf("url must be absolute, got %q", rawURL)
	}

	client := f.client
	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return "", fmt.Errorf("invalid proxy url %q: %w", opts.Proxy, err)
		}
		client = &http.Client{Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)}}
	}

	return retryWithBackoff(ctx, f.log, f.sleep, rawURL, opts.MaxRetries, func() (string, error) {
		return f.attempt(ctx, client, rawURL, opts)
	})
}

// attempt performs a single GET with the per-attempt deadline applied.
// Transport errors, timeouts, and non-2xx statuses all fail the attempt.
func (f *HTTPFetcher) attempt(ctx context.Context, client *http.Client, rawURL string, opts Options) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, opts.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", opts.userAgent())

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

package fetcher

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog"
)

// CollyFetcher implements the Fetcher interface using colly. It applies
// the same retry policy as HTTPFetcher; each attempt runs on a fresh
// collector so calls stay independent.
type CollyFetcher struct {
	log   zerolog.Logger
	sleep sleepFunc
}

// NewCollyFetcher creates a new CollyFetcher instance.
func NewCollyFetcher(log zerolog.Logger) *CollyFetcher {
	return &CollyFetcher{
		log:   log,
		sleep: sleepContext,
	}
}

// Fetch implements the Fetcher interface.
func (cf *CollyFetcher) Fetch(ctx context.Context, rawURL string, opts Options) (string, error) {
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

	return retryWithBackoff(ctx, cf.log, cf.sleep, rawURL, opts.MaxRetries, func() (string, error) {
		return cf.attempt(rawURL, opts)
	})
}

func (cf *CollyFetcher) attempt(rawURL string, opts Options) (string, error) {
	c := colly.NewCollector(
		colly.UserAgent(opts.userAgent()),
	)
	c.SetRequestTimeout(opts.timeout())

	if opts.Proxy != "" {
		if err := c.SetProxy(opts.Proxy); err != nil {
			return "", fmt.Errorf("failed to set proxy: %w", err)
		}
	}

	var body string
	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(rawURL); err != nil {
		return "", fmt.Errorf("failed to visit URL: %w", err)
	}
	c.Wait()

	if fetchErr != nil {
		return "", fetchErr
	}
	return body, nil
}

package fetcher

import (
	"context"
	"errors"
	"time"
)

// Fetcher retrieves the raw HTML content of a single page.
type Fetcher interface {
	// Fetch returns the page body for url, or an error wrapping
	// ErrFetchExhausted once every allowed attempt has failed.
	Fetch(ctx context.Context, url string, opts Options) (string, error)
}

// Options control a single fetch call. Immutable per call.
type Options struct {
	// UserAgent is sent as the User-Agent header. Empty selects the
	// first entry of DefaultUserAgents.
	UserAgent string

	// Proxy is an optional proxy URL requests are routed through.
	Proxy string

	// Timeout is the hard deadline applied to each individual attempt.
	// Zero or negative selects DefaultTimeout.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt, so a
	// fetch makes at most MaxRetries+1 attempts. Must be >= 0.
	MaxRetries int
}

// DefaultTimeout is the per-attempt deadline used when Options.Timeout
// is unset.
const DefaultTimeout = 10 * time.Second

// DefaultUserAgents are browser user-agent strings used when no
// user agent is configured; the first entry is the fallback.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
}

// ErrFetchExhausted marks a definitive per-URL failure after all retry
// attempts were consumed. Callers should treat it as "page unavailable"
// rather than a crash.
var ErrFetchExhausted = errors.New("all fetch attempts exhausted")

func (o Options) userAgent() string {
	if o.UserAgent != "" {
		return o.UserAgent
	}
	return DefaultUserAgents[0]
}

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return DefaultTimeout
}

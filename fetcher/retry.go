package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// sleepFunc suspends for d or until ctx is cancelled. Fetchers hold it
// as a field so tests can simulate elapsed time without real delays.
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// retryWithBackoff runs fn up to maxRetries+1 times, waiting 2^attempt
// seconds after each failed attempt (1s, 2s, 4s, ...). It returns the
// first success, or an error wrapping ErrFetchExhausted once all
// attempts failed or the context was cancelled during backoff.
func retryWithBackoff(ctx context.Context, log zerolog.Logger, sleep sleepFunc, url string, maxRetries int, fn func() (string, error)) (string, error) {
	attempts := maxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		log.Debug().Str("url", url).Int("attempt", attempt).Msg("fetching page")

		body, err := fn()
		if err == nil {
			return body, nil
		}
		lastErr = err

		log.Warn().
			Str("url", url).
			Int("attempt", attempt).
			Err(err).
			Msg("fetch attempt failed")

		if attempt == attempts-1 {
			break
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		if err := sleep(ctx, backoff); err != nil {
			lastErr = err
			break
		}
	}

	log.Error().
		Str("url", url).
		Int("attempts", attempts).
		Err(lastErr).
		Msg("failed to fetch page")

	return "", fmt.Errorf("%w: %s: %v", ErrFetchExhausted, url, lastErr)
}

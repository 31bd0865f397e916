// Package fetch downloads remote binary assets with bounded retry and
// failure classification.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lumakr/luma/internal/domain"
	"github.com/lumakr/luma/internal/metrics"
)

// maxServerErrorStrikes short-circuits retries once the remote has
// rejected the request this many times, independent of the attempt bound.
const maxServerErrorStrikes = 3

// Doer issues a single HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config controls the retry behavior of a Fetcher.
type Config struct {
	MaxRetries int           // total attempts (default 3)
	RetryDelay time.Duration // fixed delay between attempts (default 5s)
}

// Fetcher downloads assets over HTTP. Retries block the calling
// goroutine; concurrency comes from running independent fetches in
// parallel workers, not from overlapping retries of one fetch.
type Fetcher struct {
	client Doer
	cfg    Config
	logger *zap.Logger
}

// New creates a Fetcher. A nil client falls back to http.DefaultClient.
func New(client Doer, cfg Config, logger *zap.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{client: client, cfg: cfg, logger: logger}
}

// StatusError reports a server-classified HTTP failure.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Fetch downloads the asset at url.
//
// Transient transport failures are retried up to MaxRetries attempts with
// a fixed delay; exhaustion propagates the last error. Any HTTP status in
// [400,600) counts one strike; after 3 strikes the fetch aborts early with
// domain.ErrMediaUnavailable — the content is treated as permanently
// absent rather than as an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	strikes := 0

	for attempt := 0; attempt < f.cfg.MaxRetries; attempt++ {
		data, err := f.attempt(ctx, url)
		if err == nil {
			metrics.FetchTotal.WithLabelValues("success").Inc()
			return data, nil
		}
		lastErr = err

		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			strikes++
			f.logger.Warn("fetch rejected by server",
				zap.String("url", url),
				zap.Int("status", statusErr.Code),
				zap.Int("strikes", strikes),
			)
			if strikes >= maxServerErrorStrikes {
				metrics.FetchTotal.WithLabelValues("unavailable").Inc()
				return nil, fmt.Errorf("fetch %s: %w", url, domain.ErrMediaUnavailable)
			}
		} else {
			f.logger.Warn("fetch attempt failed",
				zap.String("url", url),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
		}

		if attempt < f.cfg.MaxRetries-1 {
			if err := sleep(ctx, f.cfg.RetryDelay); err != nil {
				metrics.FetchTotal.WithLabelValues("error").Inc()
				return nil, err
			}
		}
	}

	metrics.FetchTotal.WithLabelValues("error").Inc()
	return nil, fmt.Errorf("fetch %s: attempts exhausted: %w", url, lastErr)
}

func (f *Fetcher) attempt(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 600 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Package fetch is the external page-fetch collaborator: it downloads pages
// over HTTP with retry and circuit-breaker protection, strips HTML down to
// plain text, and can crawl a site breadth-first to collect page URLs. The
// core pipeline never performs network I/O itself; callers hand it the texts
// this package produces.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/searchlab/retrieval-eval-platform/pkg/config"
	apperrors "github.com/searchlab/retrieval-eval-platform/pkg/errors"
	"github.com/searchlab/retrieval-eval-platform/pkg/metrics"
	"github.com/searchlab/retrieval-eval-platform/pkg/resilience"
)

// Error reports a failed page fetch. It wraps the transport or status error
// and records the URL that failed.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return apperrors.ErrFetchFailed
}

// Fetcher downloads pages and extracts their text.
type Fetcher struct {
	client  *http.Client
	cfg     config.FetcherConfig
	breaker *resilience.CircuitBreaker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Fetcher with the configured timeout and retry policy. m may
// be nil; fetch counters are then not recorded.
func New(cfg config.FetcherConfig, m *metrics.Metrics) *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		breaker: resilience.NewCircuitBreaker("fetcher", resilience.CircuitBreakerConfig{}),
		metrics: m,
		logger:  slog.Default().With("component", "fetcher"),
	}
}

// Fetch downloads the page at url and returns its plain text with HTML
// markup stripped. Transport failures are retried with backoff; repeated
// failures trip the circuit breaker. All failures surface as *Error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	var body []byte
	retryCfg := resilience.RetryConfig{MaxAttempts: f.cfg.MaxAttempts}
	err := resilience.Retry(ctx, "fetch", retryCfg, func() error {
		return f.breaker.Execute(func() error {
			data, err := f.download(ctx, url)
			if err != nil {
				return err
			}
			body = data
			return nil
		})
	})
	if err != nil {
		f.countRequest("error")
		f.logger.Warn("fetch failed", "url", url, "error", err)
		return "", &Error{URL: url, Err: err}
	}
	f.countRequest("ok")

	text, _, err := ExtractText(strings.NewReader(string(body)))
	if err != nil {
		return "", &Error{URL: url, Err: err}
	}
	f.logger.Debug("page fetched", "url", url, "bytes", len(body), "text_len", len(text))
	return text, nil
}

func (f *Fetcher) countRequest(outcome string) {
	if f.metrics != nil {
		f.metrics.FetchRequestsTotal.WithLabelValues(outcome).Inc()
	}
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	limited := io.LimitReader(resp.Body, f.cfg.MaxBodyBytes)
	return io.ReadAll(limited)
}

// Package corpus owns the session's document set and its inverted index.
// Ingestion is batch-oriented: every call discards the previous index and
// rebuilds from scratch; there is no incremental update.
package corpus

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/searchlab/retrieval-eval-platform/internal/index"
	"github.com/searchlab/retrieval-eval-platform/pkg/config"
	apperrors "github.com/searchlab/retrieval-eval-platform/pkg/errors"
)

// PageFetcher supplies page text for URL ingestion. The production
// implementation is internal/fetch; tests substitute a stub.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Crawler optionally extends PageFetcher with breadth-first site crawling.
type Crawler interface {
	Crawl(ctx context.Context, start string, max int) ([]string, error)
}

// IngestResult summarises one ingestion batch.
type IngestResult struct {
	DocCount  int `json:"doc_count"`
	TermCount int `json:"term_count"`
	Skipped   int `json:"skipped"`
}

// Service holds the current index behind a RWMutex. Rebuilds swap the index
// pointer under the write lock; readers take a snapshot under the read lock,
// so in-flight searches keep a consistent view.
type Service struct {
	mu      sync.RWMutex
	idx     *index.Index
	fetcher PageFetcher
	cfg     config.SearchConfig
	logger  *slog.Logger
}

// NewService creates a Service with an empty index.
func NewService(cfg config.SearchConfig, fetcher PageFetcher) *Service {
	return &Service{
		idx:     index.New(),
		fetcher: fetcher,
		cfg:     cfg,
		logger:  slog.Default().With("component", "corpus"),
	}
}

// IngestTexts validates the batch and rebuilds the index from it. Document
// identifiers are assigned 1-based in batch order. An empty batch yields an
// empty index.
func (s *Service) IngestTexts(texts []string) (IngestResult, error) {
	if err := validateBatch(texts, s.cfg); err != nil {
		return IngestResult{}, err
	}
	idx := index.Build(texts)

	s.mu.Lock()
	s.idx = idx
	s.mu.Unlock()

	s.logger.Info("corpus rebuilt",
		"documents", idx.DocCount(),
		"terms", idx.TermCount(),
	)
	return IngestResult{
		DocCount:  idx.DocCount(),
		TermCount: idx.TermCount(),
	}, nil
}

// IngestURLs fetches every URL and rebuilds the index from the pages that
// could be retrieved. A page that fails to fetch is skipped and counted, not
// fatal; the batch only fails when validation rejects the fetched texts.
func (s *Service) IngestURLs(ctx context.Context, urls []string) (IngestResult, error) {
	texts := make([]string, 0, len(urls))
	skipped := 0
	for _, url := range urls {
		text, err := s.fetcher.Fetch(ctx, url)
		if err != nil {
			s.logger.Warn("skipping unfetchable page", "url", url, "error", err)
			skipped++
			continue
		}
		texts = append(texts, text)
	}
	result, err := s.IngestTexts(texts)
	if err != nil {
		return IngestResult{}, err
	}
	result.Skipped = skipped
	return result, nil
}

// IngestCrawl crawls breadth-first from start, then ingests the discovered
// pages. Fails when the configured fetcher cannot crawl.
func (s *Service) IngestCrawl(ctx context.Context, start string, max int) (IngestResult, error) {
	crawler, ok := s.fetcher.(Crawler)
	if !ok {
		return IngestResult{}, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"crawl ingestion is not supported by the configured fetcher")
	}
	urls, err := crawler.Crawl(ctx, start, max)
	if err != nil {
		return IngestResult{}, err
	}
	s.logger.Info("crawl finished", "start", start, "pages", len(urls))
	return s.IngestURLs(ctx, urls)
}

// Index returns the current index snapshot. The returned index is immutable:
// rebuilds produce a new one rather than mutating it.
func (s *Service) Index() *index.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx
}

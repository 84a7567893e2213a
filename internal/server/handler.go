// Package server exposes the retrieval pipeline over HTTP: corpus ingestion,
// query search, relevance judgment management, and evaluation.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/searchlab/retrieval-eval-platform/internal/analytics"
	"github.com/searchlab/retrieval-eval-platform/internal/corpus"
	"github.com/searchlab/retrieval-eval-platform/internal/eval"
	"github.com/searchlab/retrieval-eval-platform/internal/qrels"
	"github.com/searchlab/retrieval-eval-platform/internal/search"
	"github.com/searchlab/retrieval-eval-platform/internal/search/cache"
	"github.com/searchlab/retrieval-eval-platform/pkg/config"
	apperrors "github.com/searchlab/retrieval-eval-platform/pkg/errors"
	"github.com/searchlab/retrieval-eval-platform/pkg/logger"
	"github.com/searchlab/retrieval-eval-platform/pkg/metrics"
)

// IngestRequest is the JSON body for corpus ingestion. Exactly one of
// Documents, URLs, and Crawl should be set; they are tried in that order.
type IngestRequest struct {
	Documents []string      `json:"documents,omitempty"`
	URLs      []string      `json:"urls,omitempty"`
	Crawl     *CrawlRequest `json:"crawl,omitempty"`
}

// CrawlRequest asks for a breadth-first crawl from Start, ingesting up to
// MaxPages pages.
type CrawlRequest struct {
	Start    string `json:"start"`
	MaxPages int    `json:"max_pages,omitempty"`
}

// JudgmentRequest is the JSON body for saving a relevance judgment.
type JudgmentRequest struct {
	Query    string `json:"query"`
	Relevant []int  `json:"relevant"`
}

// EvaluateRequest is the JSON body for an evaluation run. When Relevant is
// omitted the judgment store is consulted for Query.
type EvaluateRequest struct {
	Query    string `json:"query"`
	Relevant []int  `json:"relevant,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// EvaluateResponse pairs the metric report with the ranking it was computed
// over.
type EvaluateResponse struct {
	Query     string      `json:"query"`
	Report    eval.Report `json:"report"`
	Retrieved []int       `json:"retrieved"`
}

// Handler holds the wired service dependencies. Cache and collector may be
// nil; the handlers degrade to uncached, untracked operation.
type Handler struct {
	corpus    *corpus.Service
	store     qrels.Store
	cache     *cache.QueryCache
	collector *analytics.Collector
	metrics   *metrics.Metrics
	cfg       config.SearchConfig
	logger    *slog.Logger
}

// New creates a Handler.
func New(
	corpusSvc *corpus.Service,
	store qrels.Store,
	queryCache *cache.QueryCache,
	collector *analytics.Collector,
	m *metrics.Metrics,
	cfg config.SearchConfig,
) *Handler {
	return &Handler{
		corpus:    corpusSvc,
		store:     store,
		cache:     queryCache,
		collector: collector,
		metrics:   m,
		cfg:       cfg,
		logger:    slog.Default().With("component", "server"),
	}
}

// Ingest handles POST /api/v1/corpus. It rebuilds the index from the supplied
// documents or URLs and invalidates the query cache.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	start := time.Now()

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var result corpus.IngestResult
	var err error
	switch {
	case req.Documents != nil:
		result, err = h.corpus.IngestTexts(req.Documents)
	case req.URLs != nil:
		result, err = h.corpus.IngestURLs(ctx, req.URLs)
	case req.Crawl != nil:
		if req.Crawl.Start == "" {
			h.writeError(w, http.StatusBadRequest, "crawl.start is required")
			return
		}
		result, err = h.corpus.IngestCrawl(ctx, req.Crawl.Start, req.Crawl.MaxPages)
	default:
		h.writeError(w, http.StatusBadRequest, "one of documents, urls, or crawl is required")
		return
	}
	if err != nil {
		var validationErr *corpus.ValidationError
		if errors.As(err, &validationErr) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": validationErr.Fields,
			})
			return
		}
		log.Error("ingestion failed", "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "ingestion failed")
		return
	}

	if h.cache != nil {
		if err := h.cache.Invalidate(ctx); err != nil {
			log.Error("cache invalidation after rebuild failed", "error", err)
		}
	}
	if h.metrics != nil {
		h.metrics.DocsIngestedTotal.Add(float64(result.DocCount))
		h.metrics.CorpusRebuildsTotal.Inc()
		h.metrics.IndexTermCount.Set(float64(result.TermCount))
	}
	if h.collector != nil {
		h.collector.Track(analytics.IngestEvent{
			Type:      analytics.EventIngest,
			DocCount:  result.DocCount,
			TermCount: result.TermCount,
			Skipped:   result.Skipped,
			LatencyMs: time.Since(start).Milliseconds(),
			Timestamp: time.Now().UTC(),
		})
	}
	log.Info("corpus ingested",
		"documents", result.DocCount,
		"terms", result.TermCount,
		"skipped", result.Skipped,
	)
	h.writeJSON(w, http.StatusCreated, result)
}

// Search handles GET /api/v1/search?q=...&limit=...
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	start := time.Now()

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	limit := h.parseLimit(r)

	result, cached := h.runSearch(ctx, query, limit)
	latency := time.Since(start)

	if h.metrics != nil {
		resultType := "hit"
		if result.TotalHits == 0 {
			resultType = "zero_result"
		}
		h.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
		cacheStatus := "miss"
		if cached {
			cacheStatus = "hit"
		}
		h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
		h.metrics.SearchResultsCount.Observe(float64(len(result.Results)))
		if h.cache != nil {
			if cached {
				h.metrics.CacheHitsTotal.Inc()
			} else {
				h.metrics.CacheMissesTotal.Inc()
			}
		}
	}
	if h.collector != nil {
		h.collector.Track(analytics.SearchEvent{
			Type:      analytics.EventSearch,
			Query:     query,
			TotalHits: result.TotalHits,
			Returned:  len(result.Results),
			LatencyMs: latency.Milliseconds(),
			CacheHit:  cached,
			Timestamp: time.Now().UTC(),
		})
	}
	log.Debug("query executed",
		"query", query,
		"total_hits", result.TotalHits,
		"cached", cached,
	)
	h.writeJSON(w, http.StatusOK, result)
}

// Evaluate handles POST /api/v1/evaluate. It runs the query, then scores the
// ranking against the ground-truth judgment — either the one supplied inline
// or the stored one for the query.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" {
		h.writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if h.corpus.Index().DocCount() == 0 {
		err := apperrors.New(apperrors.ErrCorpusEmpty, http.StatusConflict,
			"evaluate requires an ingested corpus")
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}
	relevant := req.Relevant
	if relevant == nil {
		stored, err := h.store.Load(ctx, req.Query)
		if err != nil {
			h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
			return
		}
		relevant = stored
	}

	limit := req.Limit
	if limit <= 0 || limit > h.cfg.MaxResults {
		limit = h.cfg.MaxResults
	}
	result := search.Run(req.Query, h.corpus.Index(), limit)
	retrieved := search.DocIDs(result.Results)

	report, err := eval.Evaluate(relevant, retrieved)
	if err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.EvalRunsTotal.Inc()
		h.metrics.EvalMetricValue.WithLabelValues("precision_at_10").Set(report.PrecisionAt10)
		h.metrics.EvalMetricValue.WithLabelValues("recall").Set(report.Recall)
		h.metrics.EvalMetricValue.WithLabelValues("map").Set(report.MAP)
		h.metrics.EvalMetricValue.WithLabelValues("mrr").Set(report.MRR)
	}
	if h.collector != nil {
		h.collector.Track(analytics.EvalEvent{
			Type:          analytics.EventEval,
			Query:         req.Query,
			Retrieved:     len(retrieved),
			RelevantCount: len(relevant),
			PrecisionAt10: report.PrecisionAt10,
			Recall:        report.Recall,
			MAP:           report.MAP,
			MRR:           report.MRR,
			Timestamp:     time.Now().UTC(),
		})
	}
	log.Info("evaluation run",
		"query", req.Query,
		"retrieved", len(retrieved),
		"report", report.String(),
	)
	h.writeJSON(w, http.StatusOK, EvaluateResponse{
		Query:     req.Query,
		Report:    report,
		Retrieved: retrieved,
	})
}

// SaveJudgment handles POST /api/v1/judgments.
func (h *Handler) SaveJudgment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req JudgmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.store.Save(ctx, req.Query, req.Relevant); err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"query":    req.Query,
		"relevant": len(req.Relevant),
	})
}

// GetJudgment handles GET /api/v1/judgments?query=...
func (h *Handler) GetJudgment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("query")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter is required")
		return
	}
	ids, err := h.store.Load(ctx, query)
	if err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, JudgmentRequest{Query: query, Relevant: ids})
}

// DeleteJudgment handles DELETE /api/v1/judgments?query=...
func (h *Handler) DeleteJudgment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("query")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter is required")
		return
	}
	if err := h.store.Delete(ctx, query); err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusNotFound, "cache not configured")
		return
	}
	hits, misses := h.cache.Stats()
	h.writeJSON(w, http.StatusOK, map[string]int64{
		"hits":   hits,
		"misses": misses,
	})
}

func (h *Handler) runSearch(ctx context.Context, query string, limit int) (*search.Result, bool) {
	if h.cache == nil {
		return search.Run(query, h.corpus.Index(), limit), false
	}
	result, cached, err := h.cache.GetOrCompute(ctx, query, limit, func() (*search.Result, error) {
		return search.Run(query, h.corpus.Index(), limit), nil
	})
	if err != nil {
		// Compute path never errors; fall back regardless.
		return search.Run(query, h.corpus.Index(), limit), false
	}
	return result, cached
}

func (h *Handler) parseLimit(r *http.Request) int {
	limit := h.cfg.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > h.cfg.MaxResults {
		limit = h.cfg.MaxResults
	}
	return limit
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

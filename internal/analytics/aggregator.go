package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/searchlab/retrieval-eval-platform/pkg/kafka"
)

// AggregatedStats is the platform-wide view served by the stats endpoint.
// EvalMeans holds the macro-average of each retrieval metric over every
// evaluation run seen so far; this is where per-query average precision and
// reciprocal rank become true mean AP / mean RR figures.
type AggregatedStats struct {
	TotalSearches     int64        `json:"total_searches"`
	TotalIngests      int64        `json:"total_ingests"`
	TotalEvalRuns     int64        `json:"total_eval_runs"`
	CacheHits         int64        `json:"cache_hits"`
	CacheMisses       int64        `json:"cache_misses"`
	ZeroResultCount   int64        `json:"zero_result_count"`
	AvgLatencyMs      float64      `json:"avg_latency_ms"`
	P50LatencyMs      int64        `json:"p50_latency_ms"`
	P95LatencyMs      int64        `json:"p95_latency_ms"`
	P99LatencyMs      int64        `json:"p99_latency_ms"`
	TopQueries        []QueryCount `json:"top_queries"`
	ZeroResultQueries []QueryCount `json:"zero_result_queries"`
	QueriesPerMinute  float64      `json:"queries_per_minute"`
	EvalMeans         EvalMeans    `json:"eval_means"`
}

// EvalMeans holds macro-averaged retrieval quality metrics.
type EvalMeans struct {
	PrecisionAt10 float64 `json:"precision_at_10"`
	Recall        float64 `json:"recall"`
	MAP           float64 `json:"map"`
	MRR           float64 `json:"mrr"`
}

// QueryCount pairs a query string with its observed count.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator consumes analytics events and maintains running statistics.
type Aggregator struct {
	mu                sync.RWMutex
	totalSearches     atomic.Int64
	totalIngests      atomic.Int64
	cacheHits         atomic.Int64
	cacheMisses       atomic.Int64
	zeroResults       atomic.Int64
	latencies         []int64
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	evalRuns          int64
	evalSums          EvalMeans
	startTime         time.Time

	logger *slog.Logger
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:         make([]int64, 0, 10000),
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		startTime:         time.Now(),
		logger:            slog.Default().With("component", "analytics-aggregator"),
	}
}

// Start enters the consume loop on the given consumer until ctx is
// cancelled.
func (a *Aggregator) Start(ctx context.Context, consumer *kafka.Consumer) error {
	a.logger.Info("analytics aggregator starting")
	return consumer.Start(ctx)
}

// HandleEvent returns a kafka.MessageHandler that dispatches decoded events
// to the aggregator. Undecodable events are logged and skipped, never
// re-queued.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		envelope, err := kafka.DecodeJSON[struct {
			Type EventType `json:"type"`
		}](value)
		if err != nil {
			agg.logger.Error("failed to decode analytics event", "error", err)
			return nil
		}
		switch envelope.Type {
		case EventSearch:
			if event, err := kafka.DecodeJSON[SearchEvent](value); err == nil {
				agg.recordSearchEvent(event)
			}
		case EventIngest:
			if event, err := kafka.DecodeJSON[IngestEvent](value); err == nil {
				agg.recordIngestEvent(event)
			}
		case EventEval:
			if event, err := kafka.DecodeJSON[EvalEvent](value); err == nil {
				agg.recordEvalEvent(event)
			}
		default:
			agg.logger.Warn("unknown analytics event type", "type", envelope.Type)
		}
		return nil
	}
}

func (a *Aggregator) recordSearchEvent(event SearchEvent) {
	a.totalSearches.Add(1)
	if event.CacheHit {
		a.cacheHits.Add(1)
	} else {
		a.cacheMisses.Add(1)
	}
	if event.TotalHits == 0 {
		a.zeroResults.Add(1)
	}

	a.mu.Lock()
	a.latencies = append(a.latencies, event.LatencyMs)
	a.queryCounts[event.Query]++
	if event.TotalHits == 0 {
		a.zeroResultQueries[event.Query]++
	}
	a.mu.Unlock()
}

func (a *Aggregator) recordIngestEvent(event IngestEvent) {
	a.totalIngests.Add(1)
}

func (a *Aggregator) recordEvalEvent(event EvalEvent) {
	a.mu.Lock()
	a.evalRuns++
	a.evalSums.PrecisionAt10 += event.PrecisionAt10
	a.evalSums.Recall += event.Recall
	a.evalSums.MAP += event.MAP
	a.evalSums.MRR += event.MRR
	a.mu.Unlock()
}

// Stats returns a snapshot of the aggregated statistics.
func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalSearches:   a.totalSearches.Load(),
		TotalIngests:    a.totalIngests.Load(),
		TotalEvalRuns:   a.evalRuns,
		CacheHits:       a.cacheHits.Load(),
		CacheMisses:     a.cacheMisses.Load(),
		ZeroResultCount: a.zeroResults.Load(),
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	if a.evalRuns > 0 {
		n := float64(a.evalRuns)
		stats.EvalMeans = EvalMeans{
			PrecisionAt10: a.evalSums.PrecisionAt10 / n,
			Recall:        a.evalSums.Recall / n,
			MAP:           a.evalSums.MAP / n,
			MRR:           a.evalSums.MRR / n,
		}
	}
	stats.TopQueries = topN(a.queryCounts, 10)
	stats.ZeroResultQueries = topN(a.zeroResultQueries, 10)
	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches) / elapsed
	}
	return stats
}

// percentile returns the p-th percentile of a sorted slice.
func percentile(sorted []int64, p int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN returns the n highest-count entries, counts descending.
func topN(counts map[string]int64, n int) []QueryCount {
	entries := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		entries = append(entries, QueryCount{Query: query, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Query < entries[j].Query
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

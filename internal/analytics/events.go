// Package analytics collects search, ingestion, and evaluation events,
// publishes them to Kafka, and aggregates them into platform-wide statistics
// including macro-averaged retrieval quality metrics.
package analytics

import "time"

type EventType string

const (
	EventSearch EventType = "search"
	EventIngest EventType = "ingest"
	EventEval   EventType = "eval"
)

// SearchEvent records one query execution.
type SearchEvent struct {
	Type       EventType `json:"type"`
	Query      string    `json:"query"`
	TotalHits  int       `json:"total_hits"`
	Returned   int       `json:"returned"`
	LatencyMs  int64     `json:"latency_ms"`
	CacheHit   bool      `json:"cache_hit"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id"`
}

// IngestEvent records one corpus rebuild.
type IngestEvent struct {
	Type      EventType `json:"type"`
	DocCount  int       `json:"doc_count"`
	TermCount int       `json:"term_count"`
	Skipped   int       `json:"skipped"`
	LatencyMs int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// EvalEvent records one evaluation run and its four metric values.
type EvalEvent struct {
	Type          EventType `json:"type"`
	Query         string    `json:"query"`
	Retrieved     int       `json:"retrieved"`
	RelevantCount int       `json:"relevant_count"`
	PrecisionAt10 float64   `json:"precision_at_10"`
	Recall        float64   `json:"recall"`
	MAP           float64   `json:"map"`
	MRR           float64   `json:"mrr"`
	Timestamp     time.Time `json:"timestamp"`
}

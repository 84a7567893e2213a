package search

import "github.com/searchlab/retrieval-eval-platform/internal/index"

// Result is the full response for one query: the ranked documents and the
// total hit count.
type Result struct {
	Query     string      `json:"query"`
	TotalHits int         `json:"total_hits"`
	Results   []ScoredDoc `json:"results"`
}

// Run scores a query against the index and packages the ranked list,
// truncated to limit when limit > 0.
func Run(query string, idx *index.Index, limit int) *Result {
	ranked := Score(query, idx)
	total := len(ranked)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if ranked == nil {
		ranked = []ScoredDoc{}
	}
	return &Result{
		Query:     query,
		TotalHits: total,
		Results:   ranked,
	}
}

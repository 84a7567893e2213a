// Package search ranks documents against the inverted index using
// term-frequency-sum scoring: each query term contributes its per-document
// occurrence count, with no IDF weighting or length normalization.
package search

import (
	"sort"

	"github.com/searchlab/retrieval-eval-platform/internal/analyzer"
	"github.com/searchlab/retrieval-eval-platform/internal/index"
)

// ScoredDoc is one ranked result: a document identifier and its accumulated
// score.
type ScoredDoc struct {
	DocID int     `json:"doc_id"`
	Score float64 `json:"score"`
}

// Score normalizes the query with the document pipeline, accumulates
// term-frequency scores over the index, and returns matching documents in
// descending score order; ties break by ascending document identifier
// (ingestion order). Documents sharing no term with the query are excluded,
// and a query matching nothing yields an empty slice — a normal, non-error
// outcome.
func Score(query string, idx *index.Index) []ScoredDoc {
	terms := analyzer.Analyze(query)
	if len(terms) == 0 {
		return nil
	}

	// Accumulator is created per call and discarded with it; terms absent
	// from the index contribute nothing.
	scores := make(map[int]float64)
	for _, term := range terms {
		for _, posting := range idx.Postings(term) {
			scores[posting.DocID] += float64(posting.Count)
		}
	}
	if len(scores) == 0 {
		return nil
	}

	ranked := make([]ScoredDoc, 0, len(scores))
	for docID, score := range scores {
		ranked = append(ranked, ScoredDoc{DocID: docID, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].DocID < ranked[j].DocID
	})
	return ranked
}

// DocIDs projects a ranked result onto its identifier sequence, preserving
// rank order.
func DocIDs(ranked []ScoredDoc) []int {
	ids := make([]int, len(ranked))
	for i, doc := range ranked {
		ids[i] = doc.DocID
	}
	return ids
}

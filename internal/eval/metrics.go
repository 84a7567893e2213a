// Package eval computes retrieval quality metrics for a single query:
// Precision@10, Recall over the retrieved set, average precision (MAP), and
// reciprocal rank (MRR). All metrics depend only on identifiers and rank
// order, never on score values.
package eval

import (
	"fmt"
	"net/http"

	apperrors "github.com/searchlab/retrieval-eval-platform/pkg/errors"
)

// PrecisionCutoff is the rank window for the precision metric.
const PrecisionCutoff = 10

// Report holds the four metric values, each in [0,1]. A Report is recomputed
// fresh on every Evaluate call; nothing is retained between calls.
type Report struct {
	PrecisionAt10 float64 `json:"precision_at_10"`
	Recall        float64 `json:"recall"`
	MAP           float64 `json:"map"`
	MRR           float64 `json:"mrr"`
}

// Evaluate scores a ranked retrieval against an independently supplied
// ground-truth relevant set. The relevant set must come from an external
// judgment, never from the retrieved list itself, or every metric trivially
// saturates.
//
// Document identifiers must be positive; a non-positive identifier in either
// argument is a caller contract violation and is reported, not coerced. An
// empty retrieved list is valid and yields an all-zero Report.
func Evaluate(relevant []int, retrieved []int) (Report, error) {
	relevantSet := make(map[int]struct{}, len(relevant))
	for _, id := range relevant {
		if id <= 0 {
			return Report{}, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
				"relevant set contains non-positive document id %d", id)
		}
		relevantSet[id] = struct{}{}
	}
	for _, id := range retrieved {
		if id <= 0 {
			return Report{}, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
				"retrieved list contains non-positive document id %d", id)
		}
	}

	return Report{
		PrecisionAt10: precisionAtK(relevantSet, retrieved, PrecisionCutoff),
		Recall:        recall(relevantSet, retrieved),
		MAP:           averagePrecision(relevantSet, retrieved),
		MRR:           reciprocalRank(relevantSet, retrieved),
	}, nil
}

// precisionAtK returns the fraction of the first k retrieved identifiers that
// are relevant. The denominator stays k even when fewer than k items were
// retrieved; an empty retrieved list scores 0.
func precisionAtK(relevant map[int]struct{}, retrieved []int, k int) float64 {
	if len(retrieved) == 0 || k <= 0 {
		return 0
	}
	window := retrieved
	if len(window) > k {
		window = window[:k]
	}
	hits := 0
	for _, id := range window {
		if _, ok := relevant[id]; ok {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

// recall returns the fraction of retrieved identifiers that are relevant.
// This is recall over the retrieved set, not over the full relevant set.
func recall(relevant map[int]struct{}, retrieved []int) float64 {
	if len(retrieved) == 0 {
		return 0
	}
	hits := 0
	for _, id := range retrieved {
		if _, ok := relevant[id]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(retrieved))
}

// averagePrecision walks the ranking in order and, at each relevant hit,
// accumulates precision at that rank; the sum is divided by the number of
// relevant hits. No hits yields 0.
func averagePrecision(relevant map[int]struct{}, retrieved []int) float64 {
	hits := 0
	sum := 0.0
	for i, id := range retrieved {
		if _, ok := relevant[id]; ok {
			hits++
			sum += float64(hits) / float64(i+1)
		}
	}
	if hits == 0 {
		return 0
	}
	return sum / float64(hits)
}

// reciprocalRank returns 1/rank of the first relevant retrieved identifier
// (1-based), or 0 when no retrieved identifier is relevant.
func reciprocalRank(relevant map[int]struct{}, retrieved []int) float64 {
	for i, id := range retrieved {
		if _, ok := relevant[id]; ok {
			return 1 / float64(i+1)
		}
	}
	return 0
}

// String renders the Report for logs and CLIs.
func (r Report) String() string {
	return fmt.Sprintf("P@10=%.4f Recall=%.4f MAP=%.4f MRR=%.4f",
		r.PrecisionAt10, r.Recall, r.MAP, r.MRR)
}

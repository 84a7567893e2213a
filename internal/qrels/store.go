// Package qrels stores ground-truth relevance judgments: for each query
// string, the set of document identifiers considered relevant. Judgments are
// always supplied externally; nothing in this package derives them from
// search results.
package qrels

import (
	"context"
	"net/http"

	apperrors "github.com/searchlab/retrieval-eval-platform/pkg/errors"
)

// Store persists and retrieves relevance judgments.
type Store interface {
	// Save replaces the judgment for query with the given document set.
	Save(ctx context.Context, query string, docIDs []int) error
	// Load returns the judged document set for query, or
	// ErrJudgmentNotFound when none was saved.
	Load(ctx context.Context, query string) ([]int, error)
	// Delete removes the judgment for query. Deleting an absent judgment
	// is not an error.
	Delete(ctx context.Context, query string) error
}

// validateJudgment rejects malformed judgment input: an empty query or a
// non-positive document identifier is a caller contract violation.
func validateJudgment(query string, docIDs []int) error {
	if query == "" {
		return apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"judgment query must not be empty")
	}
	for _, id := range docIDs {
		if id <= 0 {
			return apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
				"judgment contains non-positive document id %d", id)
		}
	}
	return nil
}

package qrels

import (
	"context"
	"net/http"
	"sync"

	apperrors "github.com/searchlab/retrieval-eval-platform/pkg/errors"
)

// MemoryStore is an in-memory Store for tests and DB-less deployments.
type MemoryStore struct {
	mu        sync.RWMutex
	judgments map[string][]int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{judgments: make(map[string][]int)}
}

// Save replaces the judgment for query.
func (s *MemoryStore) Save(ctx context.Context, query string, docIDs []int) error {
	if err := validateJudgment(query, docIDs); err != nil {
		return err
	}
	ids := make([]int, len(docIDs))
	copy(ids, docIDs)

	s.mu.Lock()
	s.judgments[query] = ids
	s.mu.Unlock()
	return nil
}

// Load returns the judged document set for query.
func (s *MemoryStore) Load(ctx context.Context, query string) ([]int, error) {
	s.mu.RLock()
	ids, ok := s.judgments[query]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrJudgmentNotFound, http.StatusNotFound,
			"no relevance judgment for query %q", query)
	}
	out := make([]int, len(ids))
	copy(out, ids)
	return out, nil
}

// Delete removes the judgment for query.
func (s *MemoryStore) Delete(ctx context.Context, query string) error {
	s.mu.Lock()
	delete(s.judgments, query)
	s.mu.Unlock()
	return nil
}

package corpus

import (
	"fmt"
	"strings"

	"github.com/searchlab/retrieval-eval-platform/pkg/config"
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// validateBatch checks an ingestion batch against the configured size limits.
// An empty batch is valid: it produces an empty index, not an error.
func validateBatch(texts []string, cfg config.SearchConfig) error {
	errs := make(map[string]string)

	if cfg.MaxBatchSize > 0 && len(texts) > cfg.MaxBatchSize {
		errs["documents"] = fmt.Sprintf("batch must contain at most %d documents", cfg.MaxBatchSize)
	}
	for i, text := range texts {
		if cfg.MaxDocumentSize > 0 && len(text) > cfg.MaxDocumentSize {
			errs[fmt.Sprintf("documents[%d]", i)] = fmt.Sprintf("document must be at most %d bytes", cfg.MaxDocumentSize)
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

package qrels

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	apperrors "github.com/searchlab/retrieval-eval-platform/pkg/errors"
	"github.com/searchlab/retrieval-eval-platform/pkg/postgres"
)

// Schema is the DDL for the judgment table. Applied by deployment tooling,
// kept here so tests and operators have one source of truth.
const Schema = `
CREATE TABLE IF NOT EXISTS relevance_judgments (
    query   TEXT    NOT NULL,
    doc_id  INTEGER NOT NULL CHECK (doc_id > 0),
    PRIMARY KEY (query, doc_id)
);`

// PostgresStore persists judgments in PostgreSQL.
type PostgresStore struct {
	client *postgres.Client
}

// NewPostgresStore wraps an existing postgres client.
func NewPostgresStore(client *postgres.Client) *PostgresStore {
	return &PostgresStore{client: client}
}

// EnsureSchema creates the judgment table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.client.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensuring judgment schema: %w", err)
	}
	return nil
}

// Save replaces the judgment for query inside a transaction.
func (s *PostgresStore) Save(ctx context.Context, query string, docIDs []int) error {
	if err := validateJudgment(query, docIDs); err != nil {
		return err
	}
	return s.client.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM relevance_judgments WHERE query = $1`, query); err != nil {
			return fmt.Errorf("clearing judgment for %q: %w", query, err)
		}
		for _, id := range docIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO relevance_judgments (query, doc_id) VALUES ($1, $2)
				 ON CONFLICT DO NOTHING`, query, id); err != nil {
				return fmt.Errorf("inserting judgment (%q, %d): %w", query, id, err)
			}
		}
		return nil
	})
}

// Load returns the judged document set for query.
func (s *PostgresStore) Load(ctx context.Context, query string) ([]int, error) {
	rows, err := s.client.DB.QueryContext(ctx,
		`SELECT doc_id FROM relevance_judgments WHERE query = $1 ORDER BY doc_id`, query)
	if err != nil {
		return nil, fmt.Errorf("loading judgment for %q: %w", query, err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning judgment row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating judgment rows: %w", err)
	}
	if len(ids) == 0 {
		return nil, apperrors.Newf(apperrors.ErrJudgmentNotFound, http.StatusNotFound,
			"no relevance judgment for query %q", query)
	}
	return ids, nil
}

// Delete removes the judgment for query.
func (s *PostgresStore) Delete(ctx context.Context, query string) error {
	if _, err := s.client.DB.ExecContext(ctx,
		`DELETE FROM relevance_judgments WHERE query = $1`, query); err != nil {
		return fmt.Errorf("deleting judgment for %q: %w", query, err)
	}
	return nil
}

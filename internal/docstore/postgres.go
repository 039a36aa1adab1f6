package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists documents in a Postgres table. The primary key on
// doc_id is what resolves concurrent first-access races: the losing insert
// becomes a no-op and falls back to reading the winner's row.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the documents table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			doc_id     TEXT PRIMARY KEY,
			text       TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}

	return nil
}

// GetOrCreate returns the current text for docID, creating an empty
// document on first access.
func (s *PostgresStore) GetOrCreate(ctx context.Context, docID string) (string, error) {
	var text string

	err := s.pool.QueryRow(ctx,
		`SELECT text FROM documents WHERE doc_id = $1`, docID).Scan(&text)
	if err == nil {
		return text, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("read document %q: %w", docID, err)
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO documents (doc_id) VALUES ($1) ON CONFLICT (doc_id) DO NOTHING`, docID)
	if err != nil {
		return "", fmt.Errorf("create document %q: %w", docID, err)
	}

	if tag.RowsAffected() == 1 {
		return "", nil
	}

	// Lost the creation race; read whatever the winner stored.
	err = s.pool.QueryRow(ctx,
		`SELECT text FROM documents WHERE doc_id = $1`, docID).Scan(&text)
	if err != nil {
		return "", fmt.Errorf("read document %q after create race: %w", docID, err)
	}

	return text, nil
}

// Read returns the current text for docID.
func (s *PostgresStore) Read(ctx context.Context, docID string) (string, error) {
	var text string

	err := s.pool.QueryRow(ctx,
		`SELECT text FROM documents WHERE doc_id = $1`, docID).Scan(&text)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}

	if err != nil {
		return "", fmt.Errorf("read document %q: %w", docID, err)
	}

	return text, nil
}

// Write replaces the text of an existing document.
func (s *PostgresStore) Write(ctx context.Context, docID, text string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET text = $2, updated_at = now()
		 WHERE doc_id = $1 AND text IS DISTINCT FROM $2`, docID, text)
	if err != nil {
		return fmt.Errorf("write document %q: %w", docID, err)
	}

	if tag.RowsAffected() == 1 {
		return nil
	}

	// Either the text was already current or the document is missing.
	var exists bool

	err = s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE doc_id = $1)`, docID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check document %q: %w", docID, err)
	}

	if !exists {
		return ErrNotFound
	}

	return nil
}

// Ensure PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

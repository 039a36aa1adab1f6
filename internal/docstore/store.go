package docstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a document has never been created.
var ErrNotFound = errors.New("document not found")

// Document is the persisted authoritative text for one room.
type Document struct {
	DocID     string
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store defines the interface for persisting document text.
// Implementations can use in-memory storage, databases, or other backends.
type Store interface {
	// GetOrCreate returns the current text for docID, creating an empty
	// document on first access. Concurrent first accesses for the same
	// docID must resolve to a single stored document.
	GetOrCreate(ctx context.Context, docID string) (string, error)

	// Read returns the current text for docID.
	// Returns ErrNotFound if the document has never been created.
	Read(ctx context.Context, docID string) (string, error)

	// Write replaces the text of an existing document. Writing the value
	// already stored succeeds without touching the backend.
	// Returns ErrNotFound if the document has never been created.
	Write(ctx context.Context, docID, text string) error
}

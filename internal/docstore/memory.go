package docstore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of the Store interface.
// Useful for testing and development.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]*Document),
	}
}

// GetOrCreate returns the current text for docID, creating an empty
// document on first access.
func (m *MemoryStore) GetOrCreate(_ context.Context, docID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if doc, exists := m.docs[docID]; exists {
		return doc.Text, nil
	}

	now := time.Now()
	m.docs[docID] = &Document{
		DocID:     docID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return "", nil
}

// Read returns the current text for docID.
func (m *MemoryStore) Read(_ context.Context, docID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, exists := m.docs[docID]
	if !exists {
		return "", ErrNotFound
	}

	return doc.Text, nil
}

// Write replaces the text of an existing document.
func (m *MemoryStore) Write(_ context.Context, docID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, exists := m.docs[docID]
	if !exists {
		return ErrNotFound
	}

	// Redundant writes under churn are common; skip them.
	if doc.Text == text {
		return nil
	}

	doc.Text = text
	doc.UpdatedAt = time.Now()

	return nil
}

// Document returns a copy of the stored document, for introspection.
func (m *MemoryStore) Document(docID string) (Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, exists := m.docs[docID]
	if !exists {
		return Document{}, false
	}

	return *doc, true
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

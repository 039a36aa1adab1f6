package auth

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory implementation of the Store interface.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryStore creates a new in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]User),
	}
}

// Create stores a new user.
func (m *MemoryStore) Create(_ context.Context, user User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[user.Username]; exists {
		return ErrUserExists
	}

	m.users[user.Username] = user

	return nil
}

// Get returns the user with the given username.
func (m *MemoryStore) Get(_ context.Context, username string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[username]
	if !exists {
		return User{}, ErrUserNotFound
	}

	return user, nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

package auth

import (
	"context"
	"errors"
	"time"
)

// Common errors.
var (
	ErrUserExists   = errors.New("username already exists")
	ErrUserNotFound = errors.New("user not found")
)

// User is a registered account.
type User struct {
	Username       string
	HashedPassword string
	CreatedAt      time.Time
}

// Store defines the interface for persisting users.
type Store interface {
	// Create stores a new user.
	// Returns ErrUserExists if the username is already taken.
	Create(ctx context.Context, user User) error

	// Get returns the user with the given username.
	// Returns ErrUserNotFound if no such user exists.
	Get(ctx context.Context, username string) (User, error)
}

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PostgresStore persists users in a Postgres table with a unique username.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the users table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			username        TEXT PRIMARY KEY,
			hashed_password TEXT NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}

	return nil
}

// Create stores a new user. A duplicate username surfaces as ErrUserExists.
func (s *PostgresStore) Create(ctx context.Context, user User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (username, hashed_password) VALUES ($1, $2)`,
		user.Username, user.HashedPassword)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrUserExists
		}

		return fmt.Errorf("create user %q: %w", user.Username, err)
	}

	return nil
}

// Get returns the user with the given username.
func (s *PostgresStore) Get(ctx context.Context, username string) (User, error) {
	var user User

	err := s.pool.QueryRow(ctx,
		`SELECT username, hashed_password, created_at FROM users WHERE username = $1`,
		username).Scan(&user.Username, &user.HashedPassword, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}

	if err != nil {
		return User{}, fmt.Errorf("get user %q: %w", username, err)
	}

	return user, nil
}

// Ensure PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

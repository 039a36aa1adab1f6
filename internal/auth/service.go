package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidCredentials is returned for bad usernames or passwords.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials is the response to a successful register or login.
type Credentials struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// Service implements account registration and login.
type Service struct {
	store  Store
	issuer *TokenIssuer
}

// NewService creates an auth service.
func NewService(store Store, issuer *TokenIssuer) *Service {
	return &Service{store: store, issuer: issuer}
}

// Register creates an account and returns credentials with a fresh token.
// A taken username surfaces as ErrUserExists.
func (s *Service) Register(ctx context.Context, username, password string) (Credentials, error) {
	if username == "" || password == "" {
		return Credentials{}, ErrInvalidCredentials
	}

	hash, err := HashPassword(password)
	if err != nil {
		return Credentials{}, fmt.Errorf("hash password: %w", err)
	}

	err = s.store.Create(ctx, User{
		Username:       username,
		HashedPassword: hash,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		return Credentials{}, err
	}

	return s.issueFor(username)
}

// Login verifies the password and returns credentials with a fresh token.
// An unknown username and a wrong password are indistinguishable to the
// caller; both surface as ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (Credentials, error) {
	user, err := s.store.Get(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Credentials{}, ErrInvalidCredentials
		}

		return Credentials{}, err
	}

	if !CheckPassword(user.HashedPassword, password) {
		return Credentials{}, ErrInvalidCredentials
	}

	return s.issueFor(username)
}

func (s *Service) issueFor(username string) (Credentials, error) {
	token, err := s.issuer.Issue(username)
	if err != nil {
		return Credentials{}, err
	}

	return Credentials{Username: username, Token: token}, nil
}

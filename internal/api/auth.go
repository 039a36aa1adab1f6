package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jmoussa/collab-editor/internal/auth"
)

// credentialsRequest is the request body for register and login.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleRegister handles PUT /register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)

		return
	}

	creds, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			http.Error(w, "username already exists", http.StatusConflict)
		case errors.Is(err, auth.ErrInvalidCredentials):
			http.Error(w, "username and password are required", http.StatusBadRequest)
		default:
			s.logger.Error("register", "err", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}

		return
	}

	s.writeJSON(w, http.StatusCreated, creds)
}

// handleLogin handles PUT /login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)

		return
	}

	creds, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			http.Error(w, "incorrect username or password", http.StatusBadRequest)

			return
		}

		s.logger.Error("login", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)

		return
	}

	s.writeJSON(w, http.StatusOK, creds)
}

// writeJSON encodes v as the response body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

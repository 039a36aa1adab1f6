package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/jmoussa/collab-editor/internal/auth"
	"github.com/jmoussa/collab-editor/internal/collab"
	"github.com/jmoussa/collab-editor/internal/docstore"
)

// Server handles HTTP requests: account registration and login, the
// snapshot-fetch endpoint, and the per-room edit channel.
type Server struct {
	collab   *collab.Handler
	store    docstore.Store
	auth     *auth.Service
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// ServerConfig holds configuration for creating a server.
type ServerConfig struct {
	Collab *collab.Handler
	Store  docstore.Store
	Auth   *auth.Service
	Logger *slog.Logger
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		collab: cfg.Collab,
		store:  cfg.Store,
		auth:   cfg.Auth,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool {
				return true // Origins are filtered upstream, if at all.
			},
		},
	}
}

// Handler returns an http.Handler with all routes configured.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPut)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPut)
	r.HandleFunc("/document/{roomName}", s.handleGetDocument).Methods(http.MethodGet)
	r.HandleFunc("/ws/{roomName}", s.handleWebSocket).Methods(http.MethodGet)

	return r
}

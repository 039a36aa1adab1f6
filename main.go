package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoussa/collab-editor/internal/api"
	"github.com/jmoussa/collab-editor/internal/auth"
	"github.com/jmoussa/collab-editor/internal/collab"
	"github.com/jmoussa/collab-editor/internal/config"
	"github.com/jmoussa/collab-editor/internal/docstore"
	"github.com/jmoussa/collab-editor/internal/rooms"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage: Postgres when configured, in-memory otherwise.
	var (
		store     docstore.Store = docstore.NewMemoryStore()
		userStore auth.Store     = auth.NewMemoryStore()
	)

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}

		defer pool.Close()

		docs := docstore.NewPostgresStore(pool)
		if err := docs.EnsureSchema(ctx); err != nil {
			return err
		}

		users := auth.NewPostgresStore(pool)
		if err := users.EnsureSchema(ctx); err != nil {
			return err
		}

		store = docs
		userStore = users

		logger.Info("using postgres storage")
	}

	registry := rooms.NewRegistry(logger)

	// Broadcasts go through redis when configured, so edits reach rooms
	// hosted on other instances.
	var broadcaster collab.Broadcaster = registry

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}

		bridge := rooms.NewBridge(registry, rdb, logger)
		broadcaster = bridge

		go func() {
			if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("broadcast bridge stopped", "err", err)
			}
		}()

		logger.Info("broadcast bridge enabled", "redis", cfg.RedisAddr)
	}

	handler := collab.NewHandler(collab.HandlerConfig{
		Store:       store,
		Registry:    registry,
		Broadcaster: broadcaster,
		Logger:      logger,
	})

	authSvc := auth.NewService(
		userStore,
		auth.NewTokenIssuer([]byte(cfg.TokenSecret), cfg.TokenTTL),
	)

	server := api.NewServer(api.ServerConfig{
		Collab: handler,
		Store:  store,
		Auth:   authSvc,
		Logger: logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("starting server", "addr", cfg.Addr)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

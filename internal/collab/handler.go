// Package collab runs the per-connection edit protocol: join a room, push
// the initial snapshot, then reconcile and rebroadcast each inbound edit.
package collab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoussa/collab-editor/internal/docstore"
	"github.com/jmoussa/collab-editor/internal/merge"
	"github.com/jmoussa/collab-editor/internal/rooms"
)

// Broadcaster fans a merged edit out to a room. *rooms.Registry satisfies
// it directly; *rooms.Bridge adds cross-instance delivery.
type Broadcaster interface {
	Broadcast(roomName string, msg rooms.EditMessage) int
}

// Handler drives the edit session loop for connections.
type Handler struct {
	store       docstore.Store
	reconciler  *merge.Reconciler
	registry    *rooms.Registry
	broadcaster Broadcaster
	logger      *slog.Logger
}

// HandlerConfig holds configuration for creating a handler.
type HandlerConfig struct {
	Store       docstore.Store
	Reconciler  *merge.Reconciler
	Registry    *rooms.Registry
	Broadcaster Broadcaster
	Logger      *slog.Logger
}

// NewHandler creates a handler. Broadcaster defaults to the registry
// itself; Reconciler and Logger default sensibly.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		store:       cfg.Store,
		reconciler:  cfg.Reconciler,
		registry:    cfg.Registry,
		broadcaster: cfg.Broadcaster,
		logger:      cfg.Logger,
	}

	if h.reconciler == nil {
		h.reconciler = merge.NewReconciler()
	}

	if h.broadcaster == nil {
		h.broadcaster = cfg.Registry
	}

	if h.logger == nil {
		h.logger = slog.Default()
	}

	return h
}

// Run executes the session loop for one connection and blocks until the
// connection closes. The room name doubles as the document id.
//
// Failures inside the loop are contained: a malformed message is dropped,
// a store failure skips that message's broadcast, and neither terminates
// the connection or its room mates.
func (h *Handler) Run(ctx context.Context, client *rooms.Client, roomName string) error {
	h.registry.Join(client, roomName)
	defer h.registry.Leave(client, roomName)

	text, err := h.store.GetOrCreate(ctx, roomName)
	if err != nil {
		return fmt.Errorf("load document %q: %w", roomName, err)
	}

	// Initial snapshot goes to this connection only, never broadcast.
	if err := client.Send(rooms.EditMessage{EditorState: text}); err != nil {
		return fmt.Errorf("send initial snapshot: %w", err)
	}

	for {
		msg, err := client.Receive()
		if err != nil {
			if errors.Is(err, rooms.ErrMalformedMessage) {
				h.logger.Warn("dropping malformed message",
					"room", roomName, "client", client.ID, "err", err)

				continue
			}

			// Connection closed, gracefully or otherwise.
			return nil
		}

		h.handleEdit(ctx, roomName, msg)
	}
}

// handleEdit reconciles one inbound edit and rebroadcasts the merged text.
func (h *Handler) handleEdit(ctx context.Context, roomName string, msg rooms.EditMessage) {
	current, err := h.store.Read(ctx, roomName)
	if err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			h.logger.Error("read document", "room", roomName, "err", err)

			return
		}

		current = ""
	}

	result := h.reconciler.Merge(current, msg.EditorState, current)
	if result.Skipped > 0 {
		h.logger.Warn("patches skipped during merge",
			"room", roomName, "applied", result.Applied, "skipped", result.Skipped)
	}

	if err := h.store.Write(ctx, roomName, result.Text); err != nil {
		// Never broadcast a state that was not persisted.
		h.logger.Error("persist merged text", "room", roomName, "err", err)

		return
	}

	h.broadcaster.Broadcast(roomName, rooms.EditMessage{
		EditorState: result.Text,
		Username:    msg.Username,
	})
}

package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jmoussa/collab-editor/internal/rooms"
)

// handleWebSocket handles GET /ws/{roomName}: it upgrades the connection
// and runs the edit session loop until the client disconnects.
//
// Note the edit channel does not require a token; registration and login
// exist as peers, but enforcement here is pending product clarification.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	roomName := mux.Vars(r)["roomName"]

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "room", roomName, "err", err)

		return
	}

	client := rooms.NewClient(uuid.NewString(), conn)
	defer func() { _ = client.Close() }()

	s.logger.Info("connection opened", "room", roomName, "client", client.ID)

	if err := s.collab.Run(r.Context(), client, roomName); err != nil {
		s.logger.Error("edit session", "room", roomName, "client", client.ID, "err", err)

		return
	}

	s.logger.Info("connection closed", "room", roomName, "client", client.ID)
}

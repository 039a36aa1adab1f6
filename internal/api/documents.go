package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// DocumentResponse is the response body of the snapshot-fetch endpoint.
type DocumentResponse struct {
	RoomName string `json:"roomName"`
	Text     string `json:"text"`
}

// handleGetDocument handles GET /document/{roomName}. It is used for the
// initial page load, before the edit channel is established, and creates
// the document on first access like the channel does.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	roomName := mux.Vars(r)["roomName"]

	text, err := s.store.GetOrCreate(r.Context(), roomName)
	if err != nil {
		s.logger.Error("fetch document", "room", roomName, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)

		return
	}

	s.writeJSON(w, http.StatusOK, DocumentResponse{
		RoomName: roomName,
		Text:     text,
	})
}

package rooms

import (
	"log/slog"
	"sync"
)

// Registry tracks which connections belong to which room and fans
// broadcasts out to them. Rooms are created implicitly on the first join
// and dropped when the last member leaves.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]map[*Client]struct{}
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		rooms:  make(map[string]map[*Client]struct{}),
		logger: logger,
	}
}

// Join registers the client under roomName and marks it Open.
// Multiple connections may share a room.
func (r *Registry) Join(client *Client, roomName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[roomName] == nil {
		r.rooms[roomName] = make(map[*Client]struct{})
	}

	r.rooms[roomName][client] = struct{}{}
	client.markOpen()
}

// Leave removes the client's registration. Idempotent: leaving a room the
// client is not in is a no-op. The room entry is dropped with its last
// member.
func (r *Registry) Leave(client *Client, roomName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveLocked(client, roomName)
}

func (r *Registry) leaveLocked(client *Client, roomName string) {
	members, ok := r.rooms[roomName]
	if !ok {
		return
	}

	delete(members, client)

	if len(members) == 0 {
		delete(r.rooms, roomName)
	}
}

// Broadcast delivers msg to every open connection in roomName and returns
// the number of successful deliveries. Delivery is best effort per
// connection: a failed send evicts that client without aborting the rest.
// Sends happen under the registry lock, so membership cannot change
// mid-broadcast and a client is never written to after it has left.
func (r *Registry) Broadcast(roomName string, msg EditMessage) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomName]
	if !ok {
		return 0
	}

	delivered := 0

	for client := range members {
		if err := client.Send(msg); err != nil {
			r.logger.Warn("evicting unreachable client",
				"room", roomName, "client", client.ID, "err", err)
			_ = client.Close()
			r.leaveLocked(client, roomName)

			continue
		}

		delivered++
	}

	return delivered
}

// RoomSize returns the number of connections registered under roomName.
func (r *Registry) RoomSize(roomName string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.rooms[roomName])
}

// RoomCount returns the number of live rooms.
func (r *Registry) RoomCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.rooms)
}

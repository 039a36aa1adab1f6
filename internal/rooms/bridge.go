package rooms

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const channelPrefix = "room:"

// envelope is the wire format published to redis. Origin identifies the
// publishing instance so it can ignore its own messages.
type envelope struct {
	Origin string `json:"origin"`
	Room   string `json:"room"`
	EditMessage
}

// Bridge fans broadcasts out across server instances via redis pub/sub.
// A local broadcast is also published to the room's channel; every other
// instance replays it into its own registry.
type Bridge struct {
	registry *Registry
	rdb      *redis.Client
	origin   string
	logger   *slog.Logger
}

// NewBridge creates a bridge in front of the given registry.
func NewBridge(registry *Registry, rdb *redis.Client, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}

	return &Bridge{
		registry: registry,
		rdb:      rdb,
		origin:   uuid.NewString(),
		logger:   logger,
	}
}

// Broadcast delivers msg locally and publishes it for other instances.
// Publish failures are logged, not surfaced: local members already got the
// message and remote delivery is best effort.
func (b *Bridge) Broadcast(roomName string, msg EditMessage) int {
	delivered := b.registry.Broadcast(roomName, msg)

	payload, err := json.Marshal(envelope{
		Origin:      b.origin,
		Room:        roomName,
		EditMessage: msg,
	})
	if err != nil {
		b.logger.Error("marshal broadcast envelope", "room", roomName, "err", err)

		return delivered
	}

	if err := b.rdb.Publish(context.Background(), channelPrefix+roomName, payload).Err(); err != nil {
		b.logger.Warn("publish broadcast", "room", roomName, "err", err)
	}

	return delivered
}

// Run subscribes to all room channels and replays messages from other
// instances into the local registry. It blocks until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	pubsub := b.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}

			var env envelope
			if err := json.Unmarshal([]byte(m.Payload), &env); err != nil {
				b.logger.Warn("dropping undecodable envelope", "channel", m.Channel, "err", err)

				continue
			}

			if env.Origin == b.origin {
				continue
			}

			b.registry.Broadcast(env.Room, env.EditMessage)
		}
	}
}

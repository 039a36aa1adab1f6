package collab_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmoussa/collab-editor/internal/collab"
	"github.com/jmoussa/collab-editor/internal/docstore"
	"github.com/jmoussa/collab-editor/internal/rooms"
	"github.com/stretchr/testify/require"
)

// mockConn is a test double for rooms.Conn.
type mockConn struct {
	mu   sync.Mutex
	sent []rooms.EditMessage

	incoming chan []byte
}

func newMockConn() *mockConn {
	return &mockConn{
		incoming: make(chan []byte, 10),
	}
}

func (m *mockConn) ReadMessage() (int, []byte, error) {
	data, ok := <-m.incoming
	if !ok {
		return 0, nil, errors.New("connection closed")
	}

	return 1, data, nil
}

func (m *mockConn) WriteJSON(v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var msg rooms.EditMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}

	m.sent = append(m.sent, msg)

	return nil
}

func (m *mockConn) Close() error {
	return nil
}

func (m *mockConn) Sent() []rooms.EditMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]rooms.EditMessage, len(m.sent))
	copy(result, m.sent)

	return result
}

// failingStore wraps a Store and fails every write.
type failingStore struct {
	docstore.Store
}

func (f *failingStore) Write(_ context.Context, _, _ string) error {
	return errors.New("storage unavailable")
}

func newHandler(store docstore.Store) (*collab.Handler, *rooms.Registry) {
	registry := rooms.NewRegistry(nil)
	handler := collab.NewHandler(collab.HandlerConfig{
		Store:    store,
		Registry: registry,
	})

	return handler, registry
}

// runSession starts the handler loop for a connection and returns when the
// session has joined its room.
func runSession(t *testing.T, handler *collab.Handler, conn *mockConn, room string) *sync.WaitGroup {
	t.Helper()

	client := rooms.NewClient(room+"-client", conn)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		_ = handler.Run(context.Background(), client, room)
	}()

	require.Eventually(t, func() bool {
		return len(conn.Sent()) >= 1
	}, time.Second, 5*time.Millisecond, "session never sent the initial snapshot")

	return &wg
}

func TestHandler_EndToEnd(t *testing.T) {
	t.Parallel()

	store := docstore.NewMemoryStore()
	handler, registry := newHandler(store)

	// Connection A joins room r1 with no prior document.
	connA := newMockConn()
	wgA := runSession(t, handler, connA, "r1")

	snapshot := connA.Sent()[0]
	if snapshot.EditorState != "" {
		t.Errorf("expected empty initial snapshot, got %q", snapshot.EditorState)
	}

	// A submits an edit.
	connA.incoming <- []byte(`{"editorState":"hello","username":"alice"}`)

	require.Eventually(t, func() bool {
		return len(connA.Sent()) >= 2
	}, time.Second, 5*time.Millisecond, "edit was never broadcast back")

	broadcast := connA.Sent()[1]
	if broadcast.EditorState != "hello" {
		t.Errorf("expected broadcast 'hello', got %q", broadcast.EditorState)
	}

	if broadcast.Username != "alice" {
		t.Errorf("expected attribution to alice, got %q", broadcast.Username)
	}

	// The store holds the merged text.
	text, err := store.Read(context.Background(), "r1")
	require.NoError(t, err)

	if text != "hello" {
		t.Errorf("expected stored text 'hello', got %q", text)
	}

	// Connection B joins the same room and receives the current text.
	connB := newMockConn()
	wgB := runSession(t, handler, connB, "r1")

	if got := connB.Sent()[0].EditorState; got != "hello" {
		t.Errorf("expected B's snapshot 'hello', got %q", got)
	}

	if registry.RoomSize("r1") != 2 {
		t.Errorf("expected 2 members in r1, got %d", registry.RoomSize("r1"))
	}

	// B's edit reaches both members.
	connB.incoming <- []byte(`{"editorState":"hello world","username":"bob"}`)

	require.Eventually(t, func() bool {
		return len(connA.Sent()) >= 3 && len(connB.Sent()) >= 2
	}, time.Second, 5*time.Millisecond, "broadcast did not reach both members")

	close(connA.incoming)
	close(connB.incoming)
	wgA.Wait()
	wgB.Wait()

	if registry.RoomSize("r1") != 0 {
		t.Errorf("expected empty room after disconnects, got %d", registry.RoomSize("r1"))
	}
}

func TestHandler_MalformedMessageKeepsConnectionOpen(t *testing.T) {
	t.Parallel()

	store := docstore.NewMemoryStore()
	handler, _ := newHandler(store)

	conn := newMockConn()
	wg := runSession(t, handler, conn, "r1")

	conn.incoming <- []byte(`this is not json`)
	conn.incoming <- []byte(`{"username":"no editor state"}`)
	conn.incoming <- []byte(`{"editorState":"still here"}`)

	require.Eventually(t, func() bool {
		return len(conn.Sent()) >= 2
	}, time.Second, 5*time.Millisecond, "valid edit after malformed ones was not processed")

	if got := conn.Sent()[1].EditorState; got != "still here" {
		t.Errorf("expected 'still here', got %q", got)
	}

	close(conn.incoming)
	wg.Wait()
}

func TestHandler_WriteFailureSkipsBroadcast(t *testing.T) {
	t.Parallel()

	store := docstore.NewMemoryStore()
	handler, _ := newHandler(&failingStore{Store: store})

	conn := newMockConn()
	wg := runSession(t, handler, conn, "r1")

	conn.incoming <- []byte(`{"editorState":"doomed"}`)
	conn.incoming <- []byte(`{"editorState":"also doomed"}`)

	// Give the loop time to process both; neither may be broadcast.
	time.Sleep(50 * time.Millisecond)

	if got := len(conn.Sent()); got != 1 {
		t.Errorf("expected only the initial snapshot, got %d messages", got)
	}

	close(conn.incoming)
	wg.Wait()
}

func TestHandler_IdempotentResubmission(t *testing.T) {
	t.Parallel()

	store := docstore.NewMemoryStore()
	handler, _ := newHandler(store)

	conn := newMockConn()
	wg := runSession(t, handler, conn, "r1")

	conn.incoming <- []byte(`{"editorState":"same text"}`)

	require.Eventually(t, func() bool {
		return len(conn.Sent()) >= 2
	}, time.Second, 5*time.Millisecond, "expected first submission broadcast")

	first, _ := store.Document("r1")

	conn.incoming <- []byte(`{"editorState":"same text"}`)

	require.Eventually(t, func() bool {
		return len(conn.Sent()) >= 3
	}, time.Second, 5*time.Millisecond, "expected second submission broadcast")

	if conn.Sent()[1].EditorState != "same text" || conn.Sent()[2].EditorState != "same text" {
		t.Error("expected identical merged text on resubmission")
	}

	// The second write was redundant and must not have touched the store.
	second, _ := store.Document("r1")
	if !second.UpdatedAt.Equal(first.UpdatedAt) {
		t.Error("expected redundant write to be a no-op")
	}

	close(conn.incoming)
	wg.Wait()
}

func TestHandler_RoomsAreIsolated(t *testing.T) {
	t.Parallel()

	store := docstore.NewMemoryStore()
	handler, _ := newHandler(store)

	connA := newMockConn()
	connB := newMockConn()
	wgA := runSession(t, handler, connA, "r1")
	wgB := runSession(t, handler, connB, "r2")

	connA.incoming <- []byte(`{"editorState":"only for r1","username":"alice"}`)

	require.Eventually(t, func() bool {
		return len(connA.Sent()) >= 2
	}, time.Second, 5*time.Millisecond)

	if got := len(connB.Sent()); got != 1 {
		t.Errorf("expected r2 member to see only its snapshot, got %d messages", got)
	}

	text, err := store.Read(context.Background(), "r2")
	require.NoError(t, err)

	if text != "" {
		t.Errorf("expected r2 document untouched, got %q", text)
	}

	close(connA.incoming)
	close(connB.incoming)
	wgA.Wait()
	wgB.Wait()
}

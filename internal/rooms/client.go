package rooms

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Common errors.
var (
	// ErrMalformedMessage marks an inbound payload that is not valid JSON
	// or is missing the editorState field. The connection stays usable.
	ErrMalformedMessage = errors.New("malformed message")

	// ErrClientClosed is returned when sending to a closed connection.
	ErrClientClosed = errors.New("client is closed")
)

// State describes a connection's position in its lifecycle.
type State int

const (
	Connecting State = iota
	Open
	Closed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Conn abstracts the underlying WebSocket connection for testability.
// *websocket.Conn from gorilla/websocket satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v any) error
	Close() error
}

// Client represents one connection bound to a room for its lifetime.
type Client struct {
	ID   string
	conn Conn

	mu    sync.Mutex
	state State
}

// NewClient wraps a connection. The client starts in the Connecting state
// and transitions to Open when it joins a room.
func NewClient(id string, conn Conn) *Client {
	return &Client{
		ID:   id,
		conn: conn,
	}
}

// State returns the client's current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// markOpen transitions Connecting -> Open. Called by the registry on join.
func (c *Client) markOpen() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Connecting {
		c.state = Open
	}
}

// Send writes a message to the client. Writes are serialized; the
// underlying connection does not support concurrent writers.
func (c *Client) Send(msg EditMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Closed {
		return ErrClientClosed
	}

	return c.conn.WriteJSON(msg)
}

// Receive blocks until the next inbound message. A payload that does not
// decode to an object with a string editorState is reported as
// ErrMalformedMessage; any other error means the connection is gone.
func (c *Client) Receive() (EditMessage, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return EditMessage{}, err
	}

	var probe struct {
		EditorState *string `json:"editorState"`
		Username    string  `json:"username"`
	}

	if err := json.Unmarshal(data, &probe); err != nil {
		return EditMessage{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	if probe.EditorState == nil {
		return EditMessage{}, fmt.Errorf("%w: missing editorState", ErrMalformedMessage)
	}

	return EditMessage{
		EditorState: *probe.EditorState,
		Username:    probe.Username,
	}, nil
}

// Close transitions the client to Closed and closes the connection.
// Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Closed {
		return nil
	}

	c.state = Closed

	return c.conn.Close()
}

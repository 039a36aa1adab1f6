package rooms

// EditMessage is the payload exchanged on the per-room channel, in both
// directions: a client submits its full editor state, and the server
// broadcasts the merged state with attribution.
type EditMessage struct {
	EditorState string `json:"editorState"`
	Username    string `json:"username,omitempty"`
}

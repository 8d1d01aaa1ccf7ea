package websocket

// OutgoingMessage is the envelope pushed to browsers. Data carries a whole
// snapshot of whatever the scope watches; clients replace their local state
// with it rather than patching.
type OutgoingMessage struct {
	Type      string `json:"type"`
	Scope     string `json:"scope"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

const (
	TypeSnapshot = "snapshot"
)

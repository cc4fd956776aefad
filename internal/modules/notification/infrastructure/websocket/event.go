package websocket

import "encoding/json"

// EventType discriminates the frames pushed over a stream so clients can tell
// keep-alives apart from content.
type EventType string

const (
	EventConnected    EventType = "connected"
	EventHeartbeat    EventType = "heartbeat"
	EventNotification EventType = "notification"
)

// Event is the unit of delivery on a stream.
type Event struct {
	Type         EventType `json:"type"`
	Notification any       `json:"notification,omitempty"`
}

func marshalEvent(event Event) []byte {
	// Event bodies are plain structs and maps; marshaling cannot fail for the
	// payloads this package produces.
	b, _ := json.Marshal(event)
	return b
}

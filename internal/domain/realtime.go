package domain

import "context"

// Server frame types
const (
	EventNotification = "notification"
	EventMessage      = "message"
	EventPong         = "pong"
	EventError        = "error"
)

// Event is a frame pushed to a live connection.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Pusher delivers events to connected clients. Delivery is best effort; the
// bool reports whether at least one live session received the event.
type Pusher interface {
	PushToUser(ctx context.Context, userID string, ev Event) bool
	BroadcastToChat(ctx context.Context, chatID int64, ev Event) bool
}

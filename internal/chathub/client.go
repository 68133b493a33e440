package chathub

import "learnhub/backend/internal/models"

// Client is one live connection attached to a room's broadcast group. It abstracts the
// transport so the hub can fan out to websocket connections and test doubles alike.
type Client interface {
	// GetID returns a per-connection identifier, unique even for the same user.
	GetID() string
	// GetUserID returns the authenticated user behind the connection.
	GetUserID() uint
	// GetRoomID returns the room the connection is attached to.
	GetRoomID() uint

	// Deliver queues ev for the client without blocking. It returns false when the
	// client cannot keep up; the hub then drops and closes it.
	Deliver(ev models.ChatEvent) bool

	// Close shuts the connection down. It must be safe to call more than once.
	Close()
}

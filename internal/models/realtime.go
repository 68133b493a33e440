package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType tags every frame the server pushes to a chat connection.
type EventType string

const (
	EventChatHistory EventType = "chat_history"
	EventChatMessage EventType = "chat_message"
)

// HistoryEntry is one backlog message inside a chat_history frame.
type HistoryEntry struct {
	ID        uint   `json:"id"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// ChatEvent is an outbound frame. Only the fields belonging to Type are encoded.
type ChatEvent struct {
	Type   EventType
	RoomID uint

	// chat_history
	History []HistoryEntry

	// chat_message
	MessageID uint
	Message   string
	Sender    string
	Timestamp string
}

type historyFrame struct {
	Type     EventType      `json:"type"`
	Messages []HistoryEntry `json:"messages"`
}

type messageFrame struct {
	Type      EventType `json:"type"`
	ID        uint      `json:"id,omitempty"`
	Message   string    `json:"message"`
	Sender    string    `json:"sender"`
	Timestamp string    `json:"timestamp"`
}

// NewHistoryEvent builds the initial backlog frame for a room.
func NewHistoryEvent(roomID uint, msgs []Message) ChatEvent {
	entries := make([]HistoryEntry, 0, len(msgs))
	for _, m := range msgs {
		entries = append(entries, HistoryEntry{
			ID:        m.ID,
			Sender:    m.Sender.Username,
			Content:   m.Content,
			Timestamp: FormatTimestamp(m.CreatedAt),
		})
	}
	return ChatEvent{Type: EventChatHistory, RoomID: roomID, History: entries}
}

// NewMessageEvent builds the broadcast frame for a persisted message.
func NewMessageEvent(msg *Message, senderName string) ChatEvent {
	return ChatEvent{
		Type:      EventChatMessage,
		RoomID:    msg.ChatRoomID,
		MessageID: msg.ID,
		Message:   msg.Content,
		Sender:    senderName,
		Timestamp: FormatTimestamp(msg.CreatedAt),
	}
}

func (e ChatEvent) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventChatHistory:
		msgs := e.History
		if msgs == nil {
			msgs = []HistoryEntry{}
		}
		return json.Marshal(historyFrame{Type: e.Type, Messages: msgs})
	case EventChatMessage:
		return json.Marshal(messageFrame{
			Type:      e.Type,
			ID:        e.MessageID,
			Message:   e.Message,
			Sender:    e.Sender,
			Timestamp: e.Timestamp,
		})
	default:
		return nil, fmt.Errorf("models: unknown chat event type %q", e.Type)
	}
}

func (e *ChatEvent) UnmarshalJSON(data []byte) error {
	var head struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	switch head.Type {
	case EventChatHistory:
		var f historyFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*e = ChatEvent{Type: f.Type, History: f.Messages}
	case EventChatMessage:
		var f messageFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*e = ChatEvent{
			Type:      f.Type,
			MessageID: f.ID,
			Message:   f.Message,
			Sender:    f.Sender,
			Timestamp: f.Timestamp,
		}
	default:
		return fmt.Errorf("models: unknown chat event type %q", head.Type)
	}
	return nil
}

// InboundFrame is the only frame a client may send.
type InboundFrame struct {
	Message string `json:"message"`
}

// FormatTimestamp renders t as ISO-8601 in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

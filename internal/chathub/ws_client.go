package chathub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"learnhub/backend/internal/config"
	"learnhub/backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocketClient implements Client over a gorilla websocket connection.
type WebSocketClient struct {
	ID      string
	Session *Session
	Conn    *websocket.Conn
	Hub     *ManagerService
	Send    chan models.ChatEvent

	mu        sync.Mutex
	closed    bool
	buffering bool
	pending   []models.ChatEvent
}

var _ historyBuffer = (*WebSocketClient)(nil)

func NewWebSocketClient(hub *ManagerService, s *Session, conn *websocket.Conn) *WebSocketClient {
	return &WebSocketClient{
		ID:      uuid.NewString(),
		Session: s,
		Conn:    conn,
		Hub:     hub,
		Send:    make(chan models.ChatEvent, config.SendBufferSize),
	}
}

func (c *WebSocketClient) GetID() string   { return c.ID }
func (c *WebSocketClient) GetUserID() uint { return c.Session.Identity().UserID }
func (c *WebSocketClient) GetRoomID() uint { return c.Session.RoomID }

func (c *WebSocketClient) Deliver(ev models.ChatEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	if c.buffering {
		c.pending = append(c.pending, ev)
		return true
	}
	select {
	case c.Send <- ev:
		return true
	default:
		return false
	}
}

func (c *WebSocketClient) startBuffering() {
	c.mu.Lock()
	c.buffering = true
	c.mu.Unlock()
}

// flushWithHistory queues the backlog, then every held broadcast newer than its last
// message, and switches the client to direct delivery.
func (c *WebSocketClient) flushWithHistory(history models.ChatEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buffering = false
	if c.closed {
		return false
	}

	var lastID uint
	if n := len(history.History); n > 0 {
		lastID = history.History[n-1].ID
	}

	queue := append([]models.ChatEvent{history}, c.pending...)
	c.pending = nil
	for i, ev := range queue {
		if i > 0 && ev.Type == models.EventChatMessage && ev.MessageID != 0 && ev.MessageID <= lastID {
			continue
		}
		select {
		case c.Send <- ev:
		default:
			return false
		}
	}
	return true
}

// Close stops the write pump, which in turn closes the connection.
func (c *WebSocketClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// Run starts the pumps. It returns immediately.
func (c *WebSocketClient) Run(ctx context.Context) {
	go c.writePump()
	go c.readPump(ctx)
}

// readPump reads frames until the connection fails. A frame that is not valid JSON
// ends the connection cleanly.
func (c *WebSocketClient) readPump(ctx context.Context) {
	defer func() {
		c.Hub.Close(c.Session, c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.Hub.log.Warn("chathub: read from client %s: %v", c.ID, err)
			}
			return
		}

		var frame models.InboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.Hub.log.Warn("chathub: malformed frame from client %s: %v", c.ID, err)
			c.writeClose(websocket.CloseUnsupportedData, "malformed frame")
			return
		}

		// storage failures are logged by the hub; the connection stays up
		_ = c.Hub.HandleInbound(ctx, c.Session, frame)
	}
}

// writePump writes queued events to the connection and keeps it alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(ev)
			if err != nil {
				c.Hub.log.Error("chathub: encode event for client %s: %v", c.ID, err)
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *WebSocketClient) writeClose(code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = c.Conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(config.WriteWait))
}

package handler

import (
	"context"
	"net/http"

	"learnhub/backend/internal/chathub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// browsers connect from the frontend origin; the token is the access check
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket authorizes the caller for the room and only then upgrades, so a
// rejected caller gets a plain 403 and never sees a chat frame.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	roomID, ok := idParam(c, "room_id")
	if !ok {
		return
	}
	// the request context ends when this handler returns; the connection outlives it
	ctx := context.WithoutCancel(c.Request.Context())

	session := chathub.NewSession(roomID)
	if err := h.Hub.Authorize(ctx, session, authResult(c)); err != nil {
		h.respondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied
		h.Log.Warn("ws: upgrade for chatroom %d failed: %v", roomID, err)
		return
	}

	client := chathub.NewWebSocketClient(h.Hub, session, conn)
	if err := h.Hub.Open(ctx, session, client); err != nil {
		h.Log.Error("ws: %v", err)
		conn.Close()
		return
	}
	client.Run(ctx)
}

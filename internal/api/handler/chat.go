package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.Chat.ListRooms(c.Request.Context(), caller(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

type createRoomRequest struct {
	StudentID *uint `json:"student_id"`
}

// GetOrCreateRoom answers 201 when the room is new and 200 when it already existed.
func (h *Handler) GetOrCreateRoom(c *gin.Context) {
	courseID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req createRoomRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}
	room, created, err := h.Chat.GetOrCreateRoom(c.Request.Context(), caller(c), courseID, req.StudentID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"chatroom_id": room.ID, "created": created})
}

func (h *Handler) GetRoom(c *gin.Context) {
	roomID, ok := idParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.Chat.Room(c.Request.Context(), caller(c), roomID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chatroom": detail.Room, "messages": detail.Messages})
}

// sendRequest takes the text in content; message is accepted for websocket-shaped clients.
type sendRequest struct {
	Content string `json:"content"`
	Message string `json:"message"`
}

func (r sendRequest) text() string {
	if r.Content != "" {
		return r.Content
	}
	return r.Message
}

func (h *Handler) SendMessage(c *gin.Context) {
	roomID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	msg, err := h.Chat.SendMessage(c.Request.Context(), caller(c), roomID, req.text())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) MarkRead(c *gin.Context) {
	roomID, ok := idParam(c, "id")
	if !ok {
		return
	}
	n, err := h.Chat.MarkRead(c.Request.Context(), caller(c), roomID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

package handler

import (
	"net/http"

	"learnhub/backend/internal/livesession"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListStudentSessions(c *gin.Context) {
	courseID, ok := idParam(c, "id")
	if !ok {
		return
	}
	views, err := h.Live.ListForStudent(c.Request.Context(), courseID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) ListInstructorSessions(c *gin.Context) {
	courseID, ok := idParam(c, "id")
	if !ok {
		return
	}
	views, err := h.Live.ListForInstructor(c.Request.Context(), caller(c), courseID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) CreateSession(c *gin.Context) {
	courseID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in livesession.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body: start_time must be RFC 3339")
		return
	}
	v, err := h.Live.Create(c.Request.Context(), caller(c), courseID, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *Handler) DeleteSession(c *gin.Context) {
	courseID, ok := idParam(c, "id")
	if !ok {
		return
	}
	sessionID, ok := idParam(c, "session_id")
	if !ok {
		return
	}
	if err := h.Live.Delete(c.Request.Context(), caller(c), courseID, sessionID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session deleted"})
}

func (h *Handler) RegisterSession(c *gin.Context) {
	sessionID, ok := idParam(c, "id")
	if !ok {
		return
	}
	joinURL, err := h.Live.Register(c.Request.Context(), caller(c), sessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"join_url": joinURL})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CourseProgress(c *gin.Context) {
	courseID, ok := idParam(c, "id")
	if !ok {
		return
	}
	r, err := h.Progress.Course(c.Request.Context(), caller(c), courseID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) CompleteLesson(c *gin.Context) {
	lessonID, ok := idParam(c, "id")
	if !ok {
		return
	}
	done, err := h.Progress.CompleteLesson(c.Request.Context(), caller(c), lessonID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, done)
}

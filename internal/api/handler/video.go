package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SearchVideos(c *gin.Context) {
	items, err := h.Videos.Search(c.Request.Context(), c.Query("q"), c.Query("maxResults"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) GetVideo(c *gin.Context) {
	v, err := h.Videos.Video(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

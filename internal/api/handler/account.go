package handler

import (
	"net/http"

	"learnhub/backend/internal/account"
	"learnhub/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// Register creates an account with the role given in the body.
func (h *Handler) Register(c *gin.Context) {
	h.register(c, "")
}

func (h *Handler) RegisterStudent(c *gin.Context) {
	h.register(c, models.RoleStudent)
}

func (h *Handler) RegisterInstructor(c *gin.Context) {
	h.register(c, models.RoleInstructor)
}

// register forces role when it is set, whatever the body says.
func (h *Handler) register(c *gin.Context, role models.Role) {
	var req account.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid registration body")
		return
	}
	if role != "" {
		req.Role = role
	}
	user, err := h.Accounts.Register(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	msg := "registration successful"
	if !user.IsApproved {
		msg = "registration received, waiting for admin approval"
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "message": msg})
}

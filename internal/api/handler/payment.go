package handler

import (
	"net/http"

	"learnhub/backend/internal/payment"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Quote(c *gin.Context) {
	courseID, ok := idParam(c, "id")
	if !ok {
		return
	}
	course, q, err := h.Payments.Quote(c.Request.Context(), caller(c), courseID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course_id": course.ID, "course_title": course.Title, "quote": q})
}

type createOrderRequest struct {
	CourseID uint `json:"course_id" binding:"required"`
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "course_id is required")
		return
	}
	checkout, err := h.Payments.CreateOrder(c.Request.Context(), caller(c), req.CourseID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkout)
}

// PaymentNotification receives the gateway's status callback.
func (h *Handler) PaymentNotification(c *gin.Context) {
	var n payment.Notification
	if err := c.ShouldBindJSON(&n); err != nil {
		badRequest(c, "missing required payment details")
		return
	}
	res, err := h.Payments.Verify(c.Request.Context(), n)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

package handler

import (
	"net/http"

	"learnhub/backend/internal/quiz"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListQuizzes(c *gin.Context) {
	courseID, ok := idParam(c, "id")
	if !ok {
		return
	}
	quizzes, err := h.Quizzes.List(c.Request.Context(), caller(c), courseID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quizzes)
}

type quizRequest struct {
	Title string `json:"title"`
}

func (h *Handler) CreateQuiz(c *gin.Context) {
	courseID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid quiz body")
		return
	}
	q, err := h.Quizzes.CreateQuiz(c.Request.Context(), caller(c), courseID, req.Title)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h *Handler) AddQuestion(c *gin.Context) {
	quizID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req quiz.NewQuestion
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid question body")
		return
	}
	q, err := h.Quizzes.AddQuestion(c.Request.Context(), caller(c), quizID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h *Handler) AttemptQuiz(c *gin.Context) {
	var req quiz.Answer
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "quiz, question, and selected_option are required")
		return
	}
	a, err := h.Quizzes.Attempt(c.Request.Context(), caller(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

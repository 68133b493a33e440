// Package handler exposes the services over HTTP and the chat websocket.
package handler

import (
	"net/http"

	"learnhub/backend/internal/account"
	"learnhub/backend/internal/auth"
	"learnhub/backend/internal/chat"
	"learnhub/backend/internal/chathub"
	"learnhub/backend/internal/livesession"
	"learnhub/backend/internal/logging"
	"learnhub/backend/internal/notify"
	"learnhub/backend/internal/payment"
	"learnhub/backend/internal/progress"
	"learnhub/backend/internal/quiz"
	"learnhub/backend/internal/video"

	"github.com/gin-gonic/gin"
)

// Handler holds the services the routes call into.
type Handler struct {
	Hub      *chathub.ManagerService
	Auth     *auth.Authenticator
	Chat     *chat.Service
	Live     *livesession.Service
	Payments *payment.Service
	Notify   *notify.Service
	Progress *progress.Service
	Accounts *account.Service
	Quizzes  *quiz.Service
	Videos   *video.Service
	Log      logging.Logger
}

// NewRouter registers every route on a new gin engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), h.Authenticate())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.POST("/api/auth/token", h.IssueToken)
	// the websocket answers 403 itself for anonymous callers
	r.GET("/ws/chat/:room_id", h.ServeWebSocket)
	// called by the payment gateway, authenticated by signature
	r.POST("/api/payments/notification", h.PaymentNotification)
	r.POST("/api/register", h.Register)
	r.POST("/api/register/student", h.RegisterStudent)
	r.POST("/api/register/instructor", h.RegisterInstructor)
	r.GET("/api/youtube/videos/:id", h.GetVideo)

	api := r.Group("/api", h.RequireAuth())
	{
		api.GET("/chat/rooms", h.ListRooms)
		api.GET("/instructor/conversations", h.ListRooms)
		api.POST("/courses/:id/chat", h.GetOrCreateRoom)
		api.GET("/chat/:id", h.GetRoom)
		api.POST("/chat/:id/send", h.SendMessage)
		api.PATCH("/chat/:id/mark-read", h.MarkRead)

		api.GET("/courses/:id/live-sessions", h.ListStudentSessions)
		api.GET("/instructor/courses/:id/live-sessions", h.ListInstructorSessions)
		api.POST("/instructor/courses/:id/live-sessions", h.CreateSession)
		api.DELETE("/instructor/courses/:id/live-sessions/:session_id", h.DeleteSession)
		api.POST("/live-sessions/:id/register", h.RegisterSession)

		api.GET("/courses/:id/price", h.Quote)
		api.POST("/payments/create-order", h.CreateOrder)

		api.GET("/notifications", h.ListNotifications)
		api.POST("/notifications/mark-all-read", h.MarkNotificationsRead)

		api.GET("/courses/:id/progress", h.CourseProgress)
		api.POST("/lessons/:id/complete", h.CompleteLesson)

		api.GET("/courses/:id/quizzes", h.ListQuizzes)
		api.POST("/courses/:id/quizzes", h.CreateQuiz)
		api.POST("/quizzes/:id/questions", h.AddQuestion)
		api.POST("/attempts", h.AttemptQuiz)

		api.GET("/youtube/search", h.SearchVideos)
	}
	return r
}

package handler

import (
	"net/http"
	"strings"

	"learnhub/backend/internal/auth"

	"github.com/gin-gonic/gin"
)

const resultKey = "auth.result"

// Authenticate resolves the bearer token (Authorization header, or ?token= for clients
// that cannot set headers) and stores the auth.Result on the context.
func (h *Handler) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("token")
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			raw = strings.TrimPrefix(header, "Bearer ")
		}
		c.Set(resultKey, h.Auth.Authenticate(c.Request.Context(), raw))
		c.Next()
	}
}

// RequireAuth rejects anonymous callers with 401.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authResult(c).IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided or are invalid"})
			return
		}
		c.Next()
	}
}

func authResult(c *gin.Context) auth.Result {
	if v, ok := c.Get(resultKey); ok {
		if res, ok := v.(auth.Result); ok {
			return res
		}
	}
	return auth.Anonymous()
}

// caller is only meaningful behind RequireAuth.
func caller(c *gin.Context) auth.Identity {
	id, _ := authResult(c).Identity()
	return id
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"learnhub/backend/internal/apperror"

	"github.com/gin-gonic/gin"
)

// respondError writes err as {"error": ...}. Upstream failures also carry the provider
// and its detail; unclassified errors are logged and hidden.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperror.KindInternal {
		h.Log.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
		return
	}

	body := gin.H{"error": appErr.Msg}
	if appErr.Kind == apperror.KindUpstream {
		h.Log.Warn("%s %s: %v", c.Request.Method, c.FullPath(), err)
		body["provider"] = appErr.Provider
		if appErr.Err != nil {
			body["detail"] = appErr.Err.Error()
		}
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// idParam parses a positive integer path parameter, answering 400 when it is not one.
func idParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}

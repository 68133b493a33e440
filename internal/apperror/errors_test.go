package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"learnhub/backend/internal/apperror"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"forbidden", apperror.Forbidden("nope"), http.StatusForbidden},
		{"not found", apperror.NotFound("chat room"), http.StatusNotFound},
		{"invalid", apperror.Invalid("empty message"), http.StatusBadRequest},
		{"unauthenticated", apperror.Unauthenticated("bad credentials"), http.StatusUnauthorized},
		{"conflict", apperror.Conflict("already paid"), http.StatusConflict},
		{"upstream 4xx", apperror.Upstream("zoom", 401, errors.New("bad token")), http.StatusBadRequest},
		{"upstream 5xx", apperror.Upstream("zoom", 503, errors.New("down")), http.StatusBadGateway},
		{"upstream unknown", apperror.Upstream("midtrans", 0, errors.New("dial")), http.StatusBadGateway},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("loading room: %w", apperror.NotFound("chat room")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperror.HTTPStatus(tt.err))
		})
	}
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", apperror.Forbidden("only instructor can mark messages"))

	assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
	assert.False(t, apperror.Is(nil, apperror.KindAuthorization))
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(errors.New("x")))
}

func TestUpstreamUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperror.Upstream("zoom", 0, cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "zoom request failed")
}

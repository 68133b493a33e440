package livesession_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"learnhub/backend/internal/apperror"
	"learnhub/backend/internal/config"
	"learnhub/backend/internal/livesession"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeZoom struct {
	tokenCalls atomic.Int32
	failStatus int

	mu       sync.Mutex
	lastBody map[string]interface{}
}

func (f *fakeZoom) body() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastBody
}

func (f *fakeZoom) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client", user)
		assert.Equal(t, "secret", pass)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "account_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "acct", r.PostForm.Get("account_id"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v2/users/me/meetings", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		if f.failStatus != 0 {
			w.WriteHeader(f.failStatus)
			_, _ = w.Write([]byte(`{"code":300,"message":"Invalid start_time"}`))
			return
		}
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.lastBody = body
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":85746065432,"join_url":"https://zoom.us/j/85746065432","start_url":"https://zoom.us/s/85746065432"}`))
	})
	return mux
}

func newZoom(t *testing.T, f *fakeZoom) *livesession.ZoomClient {
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return livesession.NewZoomClient(context.Background(), config.ZoomConfig{
		AccountID:    "acct",
		ClientID:     "client",
		ClientSecret: "secret",
		APIBaseURL:   srv.URL + "/v2",
		TokenURL:     srv.URL + "/oauth/token",
		Timezone:     "Asia/Jakarta",
	})
}

func TestZoomCreateMeeting(t *testing.T) {
	f := &fakeZoom{}
	z := newZoom(t, f)
	start := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

	m, err := z.CreateMeeting(context.Background(), livesession.MeetingRequest{Topic: "Q&A", StartTime: start, DurationMinutes: 45})
	require.NoError(t, err)
	assert.Equal(t, "85746065432", m.ID)
	assert.Equal(t, "https://zoom.us/j/85746065432", m.JoinURL)
	assert.Equal(t, "https://zoom.us/s/85746065432", m.StartURL)

	body := f.body()
	assert.Equal(t, "Q&A", body["topic"])
	assert.Equal(t, "2025-06-02T09:30:00Z", body["start_time"])
	assert.EqualValues(t, 45, body["duration"])
	assert.EqualValues(t, 2, body["type"])
	assert.Equal(t, "Asia/Jakarta", body["timezone"])

	_, err = z.CreateMeeting(context.Background(), livesession.MeetingRequest{Topic: "again", StartTime: start, DurationMinutes: 30})
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.tokenCalls.Load(), "token is reused")
}

func TestZoomCreateMeetingUpstreamError(t *testing.T) {
	z := newZoom(t, &fakeZoom{failStatus: http.StatusBadRequest})

	_, err := z.CreateMeeting(context.Background(), livesession.MeetingRequest{Topic: "x", StartTime: time.Now(), DurationMinutes: 30})
	require.Error(t, err)

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindUpstream, appErr.Kind)
	assert.Equal(t, "zoom", appErr.Provider)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Contains(t, err.Error(), "Invalid start_time")
}

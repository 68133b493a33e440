package video_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"learnhub/backend/internal/apperror"
	"learnhub/backend/internal/config"
	"learnhub/backend/internal/video"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeYouTube(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "yt-key", q.Get("key"))
		assert.Equal(t, "snippet", q.Get("part"))
		assert.Equal(t, "video", q.Get("type"))
		w.Header().Set("Content-Type", "application/json")
		if q.Get("q") == "quota" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"code":403,"message":"quota exceeded","errors":[{"reason":"quotaExceeded","message":"quota exceeded"}]}}`))
			return
		}
		assert.Equal(t, "golang channels", q.Get("q"))
		assert.Equal(t, "3", q.Get("maxResults"))
		_, _ = w.Write([]byte(`{"items":[
			{"id":{"kind":"youtube#video","videoId":"abc123"},"snippet":{"title":"Channels","description":"intro","channelTitle":"Gophers",
			 "thumbnails":{"default":{"url":"https://img/abc-d.jpg"},"high":{"url":"https://img/abc-h.jpg"}}}},
			{"id":{"kind":"youtube#channel","channelId":"UC1"},"snippet":{"title":"skipped"}}
		]}`))
	})
	mux.HandleFunc("/youtube/v3/videos", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("id") != "abc123" {
			_, _ = w.Write([]byte(`{"items":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"items":[{"id":"abc123",
			"snippet":{"title":"Channels","description":"intro","channelTitle":"Gophers","publishedAt":"2024-01-02T03:04:05Z"},
			"contentDetails":{"duration":"PT12M3S"},
			"statistics":{"viewCount":"4521"}}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newYouTube(t *testing.T) *video.Service {
	srv := fakeYouTube(t)
	yt, err := video.NewYouTube(context.Background(), config.YouTubeConfig{APIKey: "yt-key", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return video.NewService(yt)
}

func TestSearch(t *testing.T) {
	svc := newYouTube(t)

	results, err := svc.Search(context.Background(), " golang channels ", "3")
	require.NoError(t, err)
	require.Len(t, results, 1, "non-video hits are dropped")
	assert.Equal(t, "abc123", results[0].VideoID)
	assert.Equal(t, "Gophers", results[0].ChannelTitle)
	assert.Equal(t, video.Thumbnails{"default": "https://img/abc-d.jpg", "high": "https://img/abc-h.jpg"}, results[0].Thumbnails)
}

func TestSearch_Validation(t *testing.T) {
	svc := video.NewService(nil)

	_, err := svc.Search(context.Background(), "  ", "")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	for _, max := range []string{"0", "51", "many"} {
		_, err = svc.Search(context.Background(), "go", max)
		assert.True(t, apperror.Is(err, apperror.KindValidation), max)
	}
}

func TestSearch_NotConfigured(t *testing.T) {
	_, err := video.NewService(nil).Search(context.Background(), "go", "")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindUpstream))
	assert.Equal(t, http.StatusBadGateway, apperror.HTTPStatus(err))
}

func TestSearch_ProviderErrorKeepsStatus(t *testing.T) {
	_, err := newYouTube(t).Search(context.Background(), "quota", "")
	require.Error(t, err)

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindUpstream, appErr.Kind)
	assert.Equal(t, "youtube", appErr.Provider)
	assert.Equal(t, http.StatusForbidden, appErr.Status)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, http.StatusBadRequest, apperror.HTTPStatus(err))
}

func TestVideo(t *testing.T) {
	svc := newYouTube(t)

	d, err := svc.Video(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Channels", d.Title)
	assert.Equal(t, "PT12M3S", d.Duration)
	assert.Equal(t, uint64(4521), d.ViewCount)
	assert.Equal(t, "2024-01-02T03:04:05Z", d.PublishedAt)

	_, err = svc.Video(context.Background(), "missing")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

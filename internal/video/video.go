// Package video looks up YouTube videos for lesson authoring.
package video

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"learnhub/backend/internal/apperror"
)

const (
	provider          = "youtube"
	defaultMaxResults = 6
	maxMaxResults     = 50
)

// Result is one search hit.
type Result struct {
	VideoID      string     `json:"videoId"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ChannelTitle string     `json:"channelTitle"`
	Thumbnails   Thumbnails `json:"thumbnails"`
}

// Thumbnails maps a size name ("default", "medium", "high") to its image URL.
type Thumbnails map[string]string

// Detail describes a single video.
type Detail struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ChannelTitle string     `json:"channelTitle"`
	PublishedAt  string     `json:"publishedAt"`
	Duration     string     `json:"duration"`
	ViewCount    uint64     `json:"viewCount"`
	Thumbnails   Thumbnails `json:"thumbnails"`
}

// Provider is the video catalogue.
type Provider interface {
	Search(ctx context.Context, query string, maxResults int64) ([]Result, error)
	Video(ctx context.Context, id string) (*Detail, error)
}

type Service struct {
	provider Provider
}

// NewService wraps provider; a nil provider means no API key is configured.
func NewService(p Provider) *Service {
	return &Service{provider: p}
}

func (s *Service) available() error {
	if s.provider == nil {
		return apperror.Upstream(provider, http.StatusServiceUnavailable, errors.New("YouTube API key not configured"))
	}
	return nil
}

// Search finds videos matching query. maxResults is the raw query value, empty for the default.
func (s *Service) Search(ctx context.Context, query, maxResults string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.Invalid("q param required")
	}
	n := int64(defaultMaxResults)
	if maxResults != "" {
		v, err := strconv.ParseInt(maxResults, 10, 64)
		if err != nil || v < 1 || v > maxMaxResults {
			return nil, apperror.Invalid("maxResults must be between 1 and 50")
		}
		n = v
	}
	if err := s.available(); err != nil {
		return nil, err
	}
	return s.provider.Search(ctx, query, n)
}

func (s *Service) Video(ctx context.Context, id string) (*Detail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.Invalid("video id required")
	}
	if err := s.available(); err != nil {
		return nil, err
	}
	return s.provider.Video(ctx, id)
}

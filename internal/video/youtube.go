package video

import (
	"context"
	"errors"
	"fmt"

	"learnhub/backend/internal/apperror"
	"learnhub/backend/internal/config"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTube queries the YouTube Data API v3 with a server-side API key.
type YouTube struct {
	svc *youtube.Service
}

var _ Provider = (*YouTube)(nil)

func NewYouTube(ctx context.Context, cfg config.YouTubeConfig) (*YouTube, error) {
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("video: create youtube client: %w", err)
	}
	return &YouTube{svc: svc}, nil
}

func (y *YouTube) Search(ctx context.Context, query string, maxResults int64) ([]Result, error) {
	resp, err := y.svc.Search.List([]string{"snippet"}).
		Type("video").
		Q(query).
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, upstream(err)
	}

	out := make([]Result, 0, len(resp.Items))
	for _, it := range resp.Items {
		if it.Id == nil || it.Id.VideoId == "" || it.Snippet == nil {
			continue
		}
		out = append(out, Result{
			VideoID:      it.Id.VideoId,
			Title:        it.Snippet.Title,
			Description:  it.Snippet.Description,
			ChannelTitle: it.Snippet.ChannelTitle,
			Thumbnails:   thumbnails(it.Snippet.Thumbnails),
		})
	}
	return out, nil
}

func (y *YouTube) Video(ctx context.Context, id string) (*Detail, error) {
	resp, err := y.svc.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(id).
		Context(ctx).
		Do()
	if err != nil {
		return nil, upstream(err)
	}
	if len(resp.Items) == 0 {
		return nil, apperror.NotFound("video")
	}

	v := resp.Items[0]
	d := &Detail{ID: v.Id}
	if v.Snippet != nil {
		d.Title = v.Snippet.Title
		d.Description = v.Snippet.Description
		d.ChannelTitle = v.Snippet.ChannelTitle
		d.PublishedAt = v.Snippet.PublishedAt
		d.Thumbnails = thumbnails(v.Snippet.Thumbnails)
	}
	if v.ContentDetails != nil {
		d.Duration = v.ContentDetails.Duration
	}
	if v.Statistics != nil {
		d.ViewCount = v.Statistics.ViewCount
	}
	return d, nil
}

func thumbnails(t *youtube.ThumbnailDetails) Thumbnails {
	out := Thumbnails{}
	if t == nil {
		return out
	}
	for name, th := range map[string]*youtube.Thumbnail{"default": t.Default, "medium": t.Medium, "high": t.High} {
		if th != nil && th.Url != "" {
			out[name] = th.Url
		}
	}
	return out
}

// upstream keeps the API's status and message so clients see why YouTube refused.
func upstream(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return apperror.Upstream(provider, gerr.Code, errors.New(gerr.Message))
	}
	return apperror.Upstream(provider, 0, err)
}

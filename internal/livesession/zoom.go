package livesession

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"learnhub/backend/internal/apperror"
	"learnhub/backend/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const zoomProvider = "zoom"

// ZoomClient creates scheduled meetings through the Zoom REST API using a
// server-to-server OAuth app. Access tokens are cached by the oauth2 transport.
type ZoomClient struct {
	http     *http.Client
	baseURL  string
	timezone string
}

var _ MeetingProvider = (*ZoomClient)(nil)

func NewZoomClient(ctx context.Context, cfg config.ZoomConfig) *ZoomClient {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
		EndpointParams: url.Values{
			"grant_type": {"account_credentials"},
			"account_id": {cfg.AccountID},
		},
	}
	tz := cfg.Timezone
	if tz == "" {
		tz = "UTC"
	}
	return &ZoomClient{
		http:     cc.Client(ctx),
		baseURL:  strings.TrimRight(cfg.APIBaseURL, "/"),
		timezone: tz,
	}
}

type zoomSettings struct {
	JoinBeforeHost        bool `json:"join_before_host"`
	WaitingRoom           bool `json:"waiting_room"`
	ApprovalType          int  `json:"approval_type"`
	RegistrationType      int  `json:"registration_type"`
	MeetingAuthentication bool `json:"meeting_authentication"`
	HostVideo             bool `json:"host_video"`
	ParticipantVideo      bool `json:"participant_video"`
	MuteUponEntry         bool `json:"mute_upon_entry"`
	AllowMultipleDevices  bool `json:"allow_multiple_devices"`
}

type zoomMeetingRequest struct {
	Topic     string       `json:"topic"`
	Type      int          `json:"type"`
	StartTime string       `json:"start_time"`
	Duration  int          `json:"duration"`
	Timezone  string       `json:"timezone"`
	Settings  zoomSettings `json:"settings"`
}

type zoomMeetingResponse struct {
	ID       json.Number `json:"id"`
	JoinURL  string      `json:"join_url"`
	StartURL string      `json:"start_url"`
}

// scheduledMeeting is Zoom's meeting type for a meeting with a fixed start time.
const scheduledMeeting = 2

func (z *ZoomClient) CreateMeeting(ctx context.Context, req MeetingRequest) (*Meeting, error) {
	body, err := json.Marshal(zoomMeetingRequest{
		Topic:     req.Topic,
		Type:      scheduledMeeting,
		StartTime: req.StartTime.UTC().Format("2006-01-02T15:04:05Z"),
		Duration:  req.DurationMinutes,
		Timezone:  z.timezone,
		Settings: zoomSettings{
			WaitingRoom:          true,
			ApprovalType:         2,
			RegistrationType:     1,
			HostVideo:            true,
			ParticipantVideo:     true,
			MuteUponEntry:        true,
			AllowMultipleDevices: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("zoom: encode meeting: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, z.baseURL+"/users/me/meetings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("zoom: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := z.http.Do(httpReq)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return nil, apperror.Upstream(zoomProvider, re.Response.StatusCode, err)
		}
		return nil, apperror.Upstream(zoomProvider, 0, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, apperror.Upstream(zoomProvider, res.StatusCode,
			fmt.Errorf("create meeting: %s", strings.TrimSpace(string(detail))))
	}

	var out zoomMeetingResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, apperror.Upstream(zoomProvider, res.StatusCode, fmt.Errorf("decode meeting: %w", err))
	}
	return &Meeting{ID: out.ID.String(), JoinURL: out.JoinURL, StartURL: out.StartURL}, nil
}

// Package config loads the process configuration from the environment (optionally seeded
// from a .env file) and validates it.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Window bounds which live sessions a view shows: sessions that ended at most EndedWithin
// ago and sessions starting at most UpcomingWithin from now.
type Window struct {
	EndedWithin    time.Duration `validate:"gt=0"`
	UpcomingWithin time.Duration `validate:"gt=0"`
}

// Bounds returns the start_time range that can hold a visible session at now, assuming no
// session runs longer than maxLength.
func (w Window) Bounds(now time.Time, maxLength time.Duration) (from, to time.Time) {
	return now.Add(-w.EndedWithin - maxLength), now.Add(w.UpcomingWithin)
}

// Visible reports whether a session spanning [start, end] falls in the window at now.
func (w Window) Visible(now, start, end time.Time) bool {
	return !start.After(now.Add(w.UpcomingWithin)) && !end.Before(now.Add(-w.EndedWithin))
}

type MidtransConfig struct {
	ServerKey  string
	Production bool
}

type ZoomConfig struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	APIBaseURL   string `validate:"required,url"`
	TokenURL     string `validate:"required,url"`
	Timezone     string
}

// YouTubeConfig is optional; without an API key video lookups answer with an upstream error.
type YouTubeConfig struct {
	APIKey string
	// BaseURL overrides the Data API endpoint, empty for the default.
	BaseURL string `validate:"omitempty,url"`
}

type MailConfig struct {
	SendgridAPIKey  string
	FromName        string
	FromAddress     string `validate:"required,email"`
	AdminAddress    string `validate:"required,email"`
	FrontendBaseURL string `validate:"required,url"`
}

type Config struct {
	Env      string `validate:"required,oneof=dev test prod"`
	HTTPAddr string `validate:"required"`

	DatabaseDSN string `validate:"required"`
	// RedisURL is optional; without it broadcasts stay in-process and email is sent inline.
	RedisURL string

	JWTSecret      string        `validate:"required,min=16"`
	JWTIssuer      string        `validate:"required"`
	AccessTokenTTL time.Duration `validate:"gt=0"`

	InstructorWindow Window
	StudentWindow    Window
	MaxSessionLength time.Duration `validate:"gt=0"`
	ReminderLead     time.Duration `validate:"gt=0"`

	AsynqConcurrency int `validate:"gt=0"`

	Midtrans MidtransConfig
	Zoom     ZoomConfig
	Mail     MailConfig
	YouTube  YouTubeConfig

	RollbarToken string
	BuildVersion string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("database_dsn", "host=localhost user=user password=password dbname=learnhub port=5432 sslmode=disable")
	v.SetDefault("redis_url", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_issuer", "learnhub-service")
	v.SetDefault("access_token_ttl", DefaultAccessTokenTTL)

	v.SetDefault("instructor_ended_within", InstructorEndedWithin)
	v.SetDefault("instructor_upcoming_within", UpcomingWithin)
	v.SetDefault("student_ended_within", StudentEndedWithin)
	v.SetDefault("student_upcoming_within", UpcomingWithin)
	v.SetDefault("max_session_length", DefaultMaxSessionLength)
	v.SetDefault("reminder_lead", DefaultReminderLead)

	v.SetDefault("asynq_concurrency", 10)

	v.SetDefault("midtrans_production", false)
	v.SetDefault("zoom_api_base_url", "https://api.zoom.us/v2")
	v.SetDefault("zoom_token_url", "https://zoom.us/oauth/token")
	v.SetDefault("zoom_timezone", "UTC")

	v.SetDefault("mail_from_name", "LearnHub")
	v.SetDefault("mail_from_address", "noreply@localhost.dev")
	v.SetDefault("mail_admin_address", "admin@localhost.dev")
	v.SetDefault("frontend_base_url", "http://localhost:5173")
}

// Load reads dotenvPath (ignored when empty or missing), then the process environment.
func Load(dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if _, err := os.Stat(dotenvPath); err == nil {
			if err := godotenv.Load(dotenvPath); err != nil {
				return nil, fmt.Errorf("config: loading %s: %w", dotenvPath, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: stat %s: %w", dotenvPath, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Env:            v.GetString("env"),
		HTTPAddr:       v.GetString("http_addr"),
		DatabaseDSN:    v.GetString("database_dsn"),
		RedisURL:       v.GetString("redis_url"),
		JWTSecret:      v.GetString("jwt_secret"),
		JWTIssuer:      v.GetString("jwt_issuer"),
		AccessTokenTTL: v.GetDuration("access_token_ttl"),
		InstructorWindow: Window{
			EndedWithin:    v.GetDuration("instructor_ended_within"),
			UpcomingWithin: v.GetDuration("instructor_upcoming_within"),
		},
		StudentWindow: Window{
			EndedWithin:    v.GetDuration("student_ended_within"),
			UpcomingWithin: v.GetDuration("student_upcoming_within"),
		},
		MaxSessionLength: v.GetDuration("max_session_length"),
		ReminderLead:     v.GetDuration("reminder_lead"),
		AsynqConcurrency: v.GetInt("asynq_concurrency"),
		Midtrans: MidtransConfig{
			ServerKey:  v.GetString("midtrans_server_key"),
			Production: v.GetBool("midtrans_production"),
		},
		Zoom: ZoomConfig{
			AccountID:    v.GetString("zoom_account_id"),
			ClientID:     v.GetString("zoom_client_id"),
			ClientSecret: v.GetString("zoom_client_secret"),
			APIBaseURL:   v.GetString("zoom_api_base_url"),
			TokenURL:     v.GetString("zoom_token_url"),
			Timezone:     v.GetString("zoom_timezone"),
		},
		Mail: MailConfig{
			SendgridAPIKey:  v.GetString("sendgrid_api_key"),
			FromName:        v.GetString("mail_from_name"),
			FromAddress:     v.GetString("mail_from_address"),
			AdminAddress:    v.GetString("mail_admin_address"),
			FrontendBaseURL: v.GetString("frontend_base_url"),
		},
		YouTube: YouTubeConfig{
			APIKey:  v.GetString("youtube_api_key"),
			BaseURL: v.GetString("youtube_api_base_url"),
		},
		RollbarToken: v.GetString("rollbar_token"),
		BuildVersion: v.GetString("build_version"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}

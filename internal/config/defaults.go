package config

import "time"

const (
	// Websocket
	WriteWait       = 10 * time.Second
	PongWait        = 60 * time.Second
	PingPeriod      = (PongWait * 9) / 10
	MaxMessageSize  = 4096
	SendBufferSize  = 256
	AuthLookupLimit = 5 * time.Second

	// Live sessions
	InstructorEndedWithin   = 180 * time.Minute
	StudentEndedWithin      = 120 * time.Minute
	UpcomingWithin          = 24 * time.Hour
	DefaultMaxSessionLength = 24 * time.Hour
	DefaultReminderLead     = 15 * time.Minute
	DefaultSessionDuration  = 60

	// Payments
	OfferWindow           = 7 * 24 * time.Hour
	OfferPercentOff       = 20
	EnrollmentMonthDays   = 30
	DefaultCurrency       = "IDR"
	DefaultAccessTokenTTL = 24 * time.Hour
)

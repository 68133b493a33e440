// Package livesession schedules meetings for courses and classifies them as upcoming,
// live or ended relative to the current time.
package livesession

import "time"

type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusLive     Status = "live"
	StatusEnded    Status = "ended"
)

// Classify is ended if start+duration < now, upcoming if start > now, live otherwise.
func Classify(now, start time.Time, duration time.Duration) Status {
	switch {
	case start.Add(duration).Before(now):
		return StatusEnded
	case start.After(now):
		return StatusUpcoming
	default:
		return StatusLive
	}
}

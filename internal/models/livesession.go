package models

import "time"

// LiveSession is a scheduled meeting. Its status is derived at read time and never stored.
type LiveSession struct {
	ID              uint      `gorm:"primaryKey"`
	CourseID        uint      `gorm:"not null;index"`
	InstructorID    uint      `gorm:"not null;index"`
	Topic           string    `gorm:"size:255;not null"`
	StartTime       time.Time `gorm:"not null;index"`
	DurationMinutes int       `gorm:"column:duration;not null"`
	MeetingID       string    `gorm:"size:50"`
	JoinURL         string    `gorm:"size:1000"`
	StartURL        string    `gorm:"size:1000"`
	// ReminderSentAt is stamped once the pre-start reminder has gone out.
	ReminderSentAt *time.Time
	CreatedAt      time.Time
}

func (s *LiveSession) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

func (s *LiveSession) EndTime() time.Time {
	return s.StartTime.Add(s.Duration())
}

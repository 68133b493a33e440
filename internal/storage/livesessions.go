package storage

import (
	"context"
	"time"

	"learnhub/backend/internal/apperror"
	"learnhub/backend/internal/models"
)

// LiveSessionQuery selects sessions of a course whose start_time falls in [StartFrom, StartTo].
type LiveSessionQuery struct {
	CourseID uint
	// InstructorID restricts to one instructor's sessions when non-zero.
	InstructorID uint
	StartFrom    time.Time
	StartTo      time.Time
	NewestFirst  bool
}

func (s *Service) CreateLiveSession(ctx context.Context, session *models.LiveSession) error {
	return s.db(ctx).Create(session).Error
}

func (s *Service) GetLiveSession(ctx context.Context, id uint) (*models.LiveSession, error) {
	var session models.LiveSession
	if err := s.db(ctx).First(&session, id).Error; err != nil {
		return nil, notFound(err, "live session")
	}
	return &session, nil
}

// DeleteLiveSession removes the session only when it belongs to courseID and instructorID.
func (s *Service) DeleteLiveSession(ctx context.Context, id, courseID, instructorID uint) error {
	res := s.db(ctx).
		Where("id = ? AND course_id = ? AND instructor_id = ?", id, courseID, instructorID).
		Delete(&models.LiveSession{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("session")
	}
	return nil
}

func (s *Service) ListLiveSessions(ctx context.Context, q LiveSessionQuery) ([]models.LiveSession, error) {
	tx := s.db(ctx).
		Where("course_id = ?", q.CourseID).
		Where("start_time >= ? AND start_time <= ?", q.StartFrom.UTC(), q.StartTo.UTC())
	if q.InstructorID != 0 {
		tx = tx.Where("instructor_id = ?", q.InstructorID)
	}
	if q.NewestFirst {
		tx = tx.Order("start_time desc, id desc")
	} else {
		tx = tx.Order("start_time asc, id asc")
	}
	var sessions []models.LiveSession
	err := tx.Find(&sessions).Error
	return sessions, err
}

// DueReminders returns sessions starting in [from, to] that have not been reminded yet.
func (s *Service) DueReminders(ctx context.Context, from, to time.Time) ([]models.LiveSession, error) {
	var sessions []models.LiveSession
	err := s.db(ctx).
		Where("reminder_sent_at IS NULL").
		Where("start_time >= ? AND start_time <= ?", from.UTC(), to.UTC()).
		Order("start_time asc").
		Find(&sessions).Error
	return sessions, err
}

func (s *Service) MarkReminderSent(ctx context.Context, sessionID uint, at time.Time) error {
	return s.db(ctx).Model(&models.LiveSession{}).
		Where("id = ?", sessionID).
		Update("reminder_sent_at", at.UTC()).Error
}

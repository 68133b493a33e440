// Package progress tracks lesson completion per enrollment. Lessons are always counted
// through their module, which belongs to the course.
package progress

import (
	"context"
	"math"
	"time"

	"learnhub/backend/internal/apperror"
	"learnhub/backend/internal/auth"
	"learnhub/backend/internal/models"
)

type Store interface {
	GetLesson(ctx context.Context, id uint) (*models.Lesson, error)
	GetEnrollment(ctx context.Context, studentID, courseID uint) (*models.Enrollment, error)
	CountCourseLessons(ctx context.Context, courseID uint) (int64, error)
	CountCompletedLessons(ctx context.Context, studentID, courseID uint) (int64, error)
	CompleteLesson(ctx context.Context, studentID, lessonID uint) (bool, error)
	UpdateEnrollmentProgress(ctx context.Context, enrollmentID uint, progress float64) error
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type Report struct {
	CourseID         uint    `json:"course_id"`
	Progress         float64 `json:"course_progress"`
	CompletedLessons int64   `json:"completed_lessons"`
	TotalLessons     int64   `json:"total_lessons"`
}

type Completion struct {
	LessonID uint    `json:"lesson_id"`
	Created  bool    `json:"created"`
	Progress float64 `json:"progress"`
}

// enrollment returns the caller's live enrollment in courseID.
func (s *Service) enrollment(ctx context.Context, caller auth.Identity, courseID uint) (*models.Enrollment, error) {
	e, err := s.store.GetEnrollment(ctx, caller.UserID, courseID)
	if apperror.Is(err, apperror.KindNotFound) {
		return nil, apperror.Forbidden("not enrolled in this course")
	}
	if err != nil {
		return nil, err
	}
	if e.Expired(s.now()) {
		return nil, apperror.Forbidden("course access has expired")
	}
	return e, nil
}

// refresh recomputes the enrollment's stored percentage.
func (s *Service) refresh(ctx context.Context, e *models.Enrollment) (*Report, error) {
	total, err := s.store.CountCourseLessons(ctx, e.CourseID)
	if err != nil {
		return nil, err
	}
	done, err := s.store.CountCompletedLessons(ctx, e.StudentID, e.CourseID)
	if err != nil {
		return nil, err
	}
	r := &Report{CourseID: e.CourseID, CompletedLessons: done, TotalLessons: total}
	if total > 0 {
		r.Progress = math.Round(float64(done)/float64(total)*10000) / 100
	}
	if r.Progress != e.Progress {
		if err := s.store.UpdateEnrollmentProgress(ctx, e.ID, r.Progress); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Course reports the caller's progress in courseID.
func (s *Service) Course(ctx context.Context, caller auth.Identity, courseID uint) (*Report, error) {
	e, err := s.enrollment(ctx, caller, courseID)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, e)
}

// CompleteLesson marks a lesson done for the caller. Repeating it is a no-op.
func (s *Service) CompleteLesson(ctx context.Context, caller auth.Identity, lessonID uint) (*Completion, error) {
	lesson, err := s.store.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.Module == nil {
		return nil, apperror.NotFound("lesson")
	}
	e, err := s.enrollment(ctx, caller, lesson.Module.CourseID)
	if err != nil {
		return nil, err
	}
	created, err := s.store.CompleteLesson(ctx, caller.UserID, lesson.ID)
	if err != nil {
		return nil, err
	}
	r, err := s.refresh(ctx, e)
	if err != nil {
		return nil, err
	}
	return &Completion{LessonID: lesson.ID, Created: created, Progress: r.Progress}, nil
}

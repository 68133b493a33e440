package storage

import (
	"context"
	"errors"
	"time"

	"learnhub/backend/internal/apperror"
	"learnhub/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Service) CreateCourse(ctx context.Context, course *models.Course) error {
	return s.db(ctx).Create(course).Error
}

func (s *Service) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if err := s.db(ctx).First(&course, id).Error; err != nil {
		return nil, notFound(err, "course")
	}
	return &course, nil
}

func (s *Service) AssignInstructor(ctx context.Context, courseID, instructorID uint) error {
	res := s.db(ctx).Model(&models.Course{}).Where("id = ?", courseID).Update("instructor_id", instructorID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("course")
	}
	return nil
}

func (s *Service) CreateModule(ctx context.Context, module *models.Module) error {
	return s.db(ctx).Create(module).Error
}

func (s *Service) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	return s.db(ctx).Create(lesson).Error
}

// GetLesson loads a lesson together with its module.
func (s *Service) GetLesson(ctx context.Context, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := s.db(ctx).Preload("Module").First(&lesson, id).Error; err != nil {
		return nil, notFound(err, "lesson")
	}
	return &lesson, nil
}

func (s *Service) GetEnrollment(ctx context.Context, studentID, courseID uint) (*models.Enrollment, error) {
	var e models.Enrollment
	err := s.db(ctx).Where("student_id = ? AND course_id = ?", studentID, courseID).First(&e).Error
	if err != nil {
		return nil, notFound(err, "enrollment")
	}
	return &e, nil
}

// FirstEnrollmentAt returns when the student first enrolled in any course, or nil.
func (s *Service) FirstEnrollmentAt(ctx context.Context, studentID uint) (*time.Time, error) {
	var e models.Enrollment
	err := s.db(ctx).Where("student_id = ?", studentID).Order("enrolled_on asc").First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e.EnrolledOn, nil
}

// EnrolledStudents returns the students enrolled in courseID, ordered by id.
func (s *Service) EnrolledStudents(ctx context.Context, courseID uint) ([]models.User, error) {
	var users []models.User
	err := s.db(ctx).
		Joins("JOIN enrollments ON enrollments.student_id = users.id").
		Where("enrollments.course_id = ?", courseID).
		Order("users.id").
		Find(&users).Error
	return users, err
}

// Enroll gets or creates the enrollment and sets its expiry. The bool reports creation.
// The insert never fails on the unique key, so Enroll is safe inside a Postgres transaction.
func (s *Service) Enroll(ctx context.Context, studentID, courseID uint, expiresOn time.Time) (*models.Enrollment, bool, error) {
	e := &models.Enrollment{
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledOn: s.DB.NowFunc(),
		ExpiresOn:  &expiresOn,
	}
	res := s.db(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(e)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return e, true, nil
	}

	err := s.db(ctx).Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Update("expires_on", expiresOn).Error
	if err != nil {
		return nil, false, err
	}
	existing, err := s.GetEnrollment(ctx, studentID, courseID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *Service) UpdateEnrollmentProgress(ctx context.Context, enrollmentID uint, progress float64) error {
	return s.db(ctx).Model(&models.Enrollment{}).Where("id = ?", enrollmentID).Update("progress", progress).Error
}

// CountCourseLessons counts lessons through their modules.
func (s *Service) CountCourseLessons(ctx context.Context, courseID uint) (int64, error) {
	var n int64
	err := s.db(ctx).Model(&models.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.course_id = ?", courseID).
		Count(&n).Error
	return n, err
}

func (s *Service) CountCompletedLessons(ctx context.Context, studentID, courseID uint) (int64, error) {
	var n int64
	err := s.db(ctx).Model(&models.LessonCompletion{}).
		Joins("JOIN lessons ON lessons.id = lesson_completions.lesson_id").
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("lesson_completions.student_id = ? AND modules.course_id = ?", studentID, courseID).
		Count(&n).Error
	return n, err
}

// CompleteLesson records a completion once. The bool reports whether a row was inserted.
func (s *Service) CompleteLesson(ctx context.Context, studentID, lessonID uint) (bool, error) {
	c := models.LessonCompletion{StudentID: studentID, LessonID: lessonID, CompletedAt: s.DB.NowFunc()}
	res := s.db(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&c)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

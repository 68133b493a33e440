// Package storage is the gorm-backed persistence layer. Missing rows surface as
// apperror NotFound errors; unique-key violations as gorm.ErrDuplicatedKey or apperror Conflict.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"learnhub/backend/internal/apperror"
	"learnhub/backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Storage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	SetUserApproved(ctx context.Context, id uint, approved bool) error

	CreateCourse(ctx context.Context, course *models.Course) error
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	AssignInstructor(ctx context.Context, courseID, instructorID uint) error
	CreateModule(ctx context.Context, module *models.Module) error
	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	GetLesson(ctx context.Context, id uint) (*models.Lesson, error)

	GetEnrollment(ctx context.Context, studentID, courseID uint) (*models.Enrollment, error)
	FirstEnrollmentAt(ctx context.Context, studentID uint) (*time.Time, error)
	EnrolledStudents(ctx context.Context, courseID uint) ([]models.User, error)
	Enroll(ctx context.Context, studentID, courseID uint, expiresOn time.Time) (*models.Enrollment, bool, error)
	UpdateEnrollmentProgress(ctx context.Context, enrollmentID uint, progress float64) error
	CountCourseLessons(ctx context.Context, courseID uint) (int64, error)
	CountCompletedLessons(ctx context.Context, studentID, courseID uint) (int64, error)
	CompleteLesson(ctx context.Context, studentID, lessonID uint) (bool, error)

	GetRoom(ctx context.Context, id uint) (*models.ChatRoom, error)
	FindRoom(ctx context.Context, courseID, studentID, instructorID uint) (*models.ChatRoom, error)
	GetOrCreateRoom(ctx context.Context, courseID, studentID, instructorID uint) (*models.ChatRoom, bool, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, roomID uint) ([]models.Message, error)
	ListRoomsForUser(ctx context.Context, userID uint) ([]models.RoomSummary, error)
	MarkStudentMessagesRead(ctx context.Context, roomID uint) (int64, error)

	CreateLiveSession(ctx context.Context, session *models.LiveSession) error
	GetLiveSession(ctx context.Context, id uint) (*models.LiveSession, error)
	DeleteLiveSession(ctx context.Context, id, courseID, instructorID uint) error
	ListLiveSessions(ctx context.Context, q LiveSessionQuery) ([]models.LiveSession, error)
	DueReminders(ctx context.Context, from, to time.Time) ([]models.LiveSession, error)
	MarkReminderSent(ctx context.Context, sessionID uint, at time.Time) error

	CreatePayment(ctx context.Context, p *models.Payment) error
	GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	SavePayment(ctx context.Context, p *models.Payment) error

	CreateNotifications(ctx context.Context, notes []models.Notification) error
	ListNotifications(ctx context.Context, recipientID uint) ([]models.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, recipientID uint) (int64, error)

	WithTx(ctx context.Context, fn func(tx *Service) error) error
}

// Service implements Storage on top of a gorm connection.
type Service struct {
	DB *gorm.DB
}

var _ Storage = (*Service)(nil)

// NewStorageService Constructor
func NewStorageService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// GormConfig is shared by the production and test databases.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         newGormLogger(log.Default()),
	}
}

// newGormLogger reports slow queries and failures. Missing rows are expected lookups and
// surface as NotFound errors instead.
func newGormLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Open connects to PostgreSQL.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), GormConfig())
	if err != nil {
		return nil, fmt.Errorf("storage: connect postgres: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Enrollment{},
		&models.Module{},
		&models.Lesson{},
		&models.LessonCompletion{},
		&models.ChatRoom{},
		&models.Message{},
		&models.LiveSession{},
		&models.Payment{},
		&models.Notification{},
		&models.Quiz{},
		&models.Question{},
		&models.QuizOption{},
		&models.QuizAttempt{},
	)
	if err != nil {
		return fmt.Errorf("storage: migrate: %w", err)
	}
	return nil
}

// WithTx runs fn inside a database transaction. fn must only use tx.
func (s *Service) WithTx(ctx context.Context, fn func(tx *Service) error) error {
	return s.DB.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&Service{DB: db})
	})
}

func (s *Service) db(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx)
}

// notFound maps gorm.ErrRecordNotFound to an apperror NotFound for what.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(what)
	}
	return err
}

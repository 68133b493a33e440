// Package storagetest opens throwaway in-memory SQLite databases migrated with the
// production schema, plus seed helpers for service tests.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"learnhub/backend/internal/models"
	"learnhub/backend/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Password is the plain-text password of every seeded user.
const Password = "s3cret-pass"

// Open returns a storage service over a fresh in-memory database.
func Open(t testing.TB) *storage.Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), storage.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, storage.Migrate(db))
	return storage.NewStorageService(db)
}

func user(t testing.TB, s *storage.Service, name string, role models.Role) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		IsApproved:   true,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func Student(t testing.TB, s *storage.Service, name string) *models.User {
	return user(t, s, name, models.RoleStudent)
}

func Instructor(t testing.TB, s *storage.Service, name string) *models.User {
	return user(t, s, name, models.RoleInstructor)
}

// Course creates a course taught by instructor (nil for none).
func Course(t testing.TB, s *storage.Service, title string, instructor *models.User) *models.Course {
	t.Helper()
	c := &models.Course{Title: title, PriceCents: 100000, DurationMonths: 6}
	if instructor != nil {
		c.InstructorID = &instructor.ID
	}
	require.NoError(t, s.CreateCourse(context.Background(), c))
	return c
}

// Enroll enrolls student in course with the given enrollment time and six months of access.
func Enroll(t testing.TB, s *storage.Service, student *models.User, course *models.Course, at time.Time) *models.Enrollment {
	t.Helper()
	expires := at.AddDate(0, 6, 0).UTC()
	e := &models.Enrollment{StudentID: student.ID, CourseID: course.ID, EnrolledOn: at.UTC(), ExpiresOn: &expires}
	require.NoError(t, s.DB.Create(e).Error)
	return e
}

// Message stores a message with an explicit timestamp.
func Message(t testing.TB, s *storage.Service, room *models.ChatRoom, sender *models.User, content string, at time.Time) *models.Message {
	t.Helper()
	m := &models.Message{ChatRoomID: room.ID, SenderID: sender.ID, Content: content, CreatedAt: at.UTC()}
	require.NoError(t, s.CreateMessage(context.Background(), m))
	return m
}

package models

import "time"

// Course has at most one instructor. Prices are integer minor units.
type Course struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"size:200;not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	PriceCents     int64     `gorm:"not null" json:"price_cents"`
	DurationMonths int       `gorm:"not null" json:"course_duration_months"`
	InstructorID   *uint     `gorm:"index" json:"instructor_id"`
	Instructor     *User     `gorm:"foreignKey:InstructorID" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasInstructor reports whether userID is the course instructor.
func (c *Course) HasInstructor(userID uint) bool {
	return c.InstructorID != nil && *c.InstructorID == userID
}

type Enrollment struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	StudentID  uint       `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"student_id"`
	CourseID   uint       `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"course_id"`
	EnrolledOn time.Time  `gorm:"not null" json:"enrolled_on"`
	ExpiresOn  *time.Time `json:"expires_on"`
	Progress   float64    `gorm:"not null" json:"progress"`
}

// Expired reports whether course access has lapsed at now.
func (e *Enrollment) Expired(now time.Time) bool {
	return e.ExpiresOn != nil && e.ExpiresOn.Before(now)
}

// Module groups lessons inside a course. Every lesson belongs to exactly one module.
type Module struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	CourseID uint   `gorm:"not null;index" json:"course_id"`
	Title    string `gorm:"size:200;not null" json:"title"`
	Position int    `gorm:"not null" json:"order"`
}

type Lesson struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ModuleID  uint      `gorm:"not null;index" json:"module_id"`
	Module    *Module   `json:"-"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	Position  int       `gorm:"not null" json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

type LessonCompletion struct {
	ID          uint      `gorm:"primaryKey"`
	StudentID   uint      `gorm:"not null;uniqueIndex:idx_completion_student_lesson"`
	LessonID    uint      `gorm:"not null;uniqueIndex:idx_completion_student_lesson"`
	CompletedAt time.Time `gorm:"not null"`
}

package models

import "time"

type Quiz struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CourseID  uint       `gorm:"not null;index" json:"course"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"created_at"`
}

// Question is graded by comparing the chosen option text with CorrectOption.
type Question struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	QuizID        uint         `gorm:"not null;index" json:"quiz"`
	Text          string       `gorm:"type:text;not null" json:"text"`
	CorrectOption string       `gorm:"size:255;not null" json:"correct_option,omitempty"`
	Options       []QuizOption `json:"options"`
}

type QuizOption struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"question"`
	Text       string `gorm:"size:255;not null" json:"text"`
}

// QuizAttempt is one answer a student gave. Every submission is kept.
type QuizAttempt struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	StudentID      uint      `gorm:"not null;index" json:"student"`
	QuizID         uint      `gorm:"not null;index" json:"quiz"`
	QuestionID     uint      `gorm:"not null" json:"question"`
	SelectedOption string    `gorm:"size:255;not null" json:"selected_option"`
	IsCorrect      bool      `gorm:"not null" json:"is_correct"`
	AttemptedAt    time.Time `gorm:"not null" json:"attempted_at"`
}

package models

import "time"

// Role is the account type. Only students and instructors take part in chat.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// User is a platform account.
type User struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// Username is the public handle shown as the chat sender.
	Username     string `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Email        string `gorm:"size:254" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         Role   `gorm:"size:20;not null" json:"role"`
	// IsActive gates authentication; inactive accounts resolve as anonymous.
	IsActive bool `gorm:"not null" json:"-"`
	// IsApproved is set by an admin for instructors before they may log in.
	IsApproved bool      `gorm:"not null" json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
}

// CanLogin reports whether the account may be issued tokens.
func (u *User) CanLogin() bool {
	if !u.IsActive {
		return false
	}
	if u.Role == RoleInstructor && !u.IsApproved {
		return false
	}
	return true
}

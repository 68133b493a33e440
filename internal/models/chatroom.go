package models

import "time"

// ChatRoom is the private channel between one student and the instructor of one course.
// The (course, student, instructor) triple is unique.
type ChatRoom struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CourseID     uint      `gorm:"not null;uniqueIndex:idx_chatroom_participants" json:"course"`
	StudentID    uint      `gorm:"not null;uniqueIndex:idx_chatroom_participants;index" json:"-"`
	InstructorID uint      `gorm:"not null;uniqueIndex:idx_chatroom_participants;index" json:"-"`
	Course       Course    `json:"-"`
	Student      User      `json:"student"`
	Instructor   User      `json:"instructor"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsParticipant reports whether userID is the room's student or instructor.
func (r *ChatRoom) IsParticipant(userID uint) bool {
	return userID != 0 && (r.StudentID == userID || r.InstructorID == userID)
}

// Message is a persisted chat message. IsRead is flipped only by the room's instructor.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ChatRoomID uint      `gorm:"not null;index:idx_message_room_created" json:"-"`
	SenderID   uint      `gorm:"not null" json:"-"`
	Sender     User      `json:"sender"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	IsRead     bool      `gorm:"not null;index" json:"is_read"`
	CreatedAt  time.Time `gorm:"not null;index:idx_message_room_created" json:"timestamp"`
}

// RoomSummary is one row of a participant's room list.
type RoomSummary struct {
	Room          ChatRoom
	LastMessage   string
	LastMessageAt *time.Time
	// UnreadCount counts unread messages sent by the room's student.
	UnreadCount int64
}

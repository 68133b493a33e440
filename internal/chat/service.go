// Package chat implements the REST side of course chat: room get-or-create, room detail,
// sending, the annotated room list and the instructor's mark-read.
package chat

import (
	"context"
	"strings"
	"time"

	"learnhub/backend/internal/apperror"
	"learnhub/backend/internal/auth"
	"learnhub/backend/internal/logging"
	"learnhub/backend/internal/models"
)

type Store interface {
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetRoom(ctx context.Context, id uint) (*models.ChatRoom, error)
	GetOrCreateRoom(ctx context.Context, courseID, studentID, instructorID uint) (*models.ChatRoom, bool, error)
	ListMessages(ctx context.Context, roomID uint) ([]models.Message, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListRoomsForUser(ctx context.Context, userID uint) ([]models.RoomSummary, error)
	MarkStudentMessagesRead(ctx context.Context, roomID uint) (int64, error)
}

// Publisher fans a persisted message out to the room's live connections.
type Publisher interface {
	Publish(ctx context.Context, roomID uint, ev models.ChatEvent) error
}

type Service struct {
	store     Store
	publisher Publisher
	log       logging.Logger
}

func NewService(store Store, publisher Publisher, log logging.Logger) *Service {
	return &Service{store: store, publisher: publisher, log: log}
}

// RoomListEntry is one row of GET /api/chat/rooms.
type RoomListEntry struct {
	ChatRoomID         uint       `json:"chatroom_id"`
	CourseID           uint       `json:"course_id"`
	CourseTitle        string     `json:"course_title"`
	StudentID          uint       `json:"student_id"`
	StudentUsername    string     `json:"student_username"`
	InstructorID       uint       `json:"instructor_id"`
	InstructorUsername string     `json:"instructor_username"`
	LastMessage        string     `json:"last_message"`
	LastMessageAt      *time.Time `json:"last_message_at"`
	// UnreadCount is omitted for students, who have no unread badge.
	UnreadCount *int64 `json:"unread_count,omitempty"`
}

// RoomDetail is a room with its ordered messages.
type RoomDetail struct {
	Room     *models.ChatRoom
	Messages []models.Message
}

// GetOrCreateRoom opens the chat for courseID. The course instructor must name the
// student; anyone else must be a student and chats for themself.
func (s *Service) GetOrCreateRoom(ctx context.Context, caller auth.Identity, courseID uint, studentID *uint) (*models.ChatRoom, bool, error) {
	course, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	if course.InstructorID == nil {
		return nil, false, apperror.Invalid("course has no instructor")
	}
	instructorID := *course.InstructorID

	var target uint
	if caller.UserID == instructorID {
		if studentID == nil || *studentID == 0 {
			return nil, false, apperror.Invalid("student_id is required for instructor")
		}
		student, err := s.store.GetUser(ctx, *studentID)
		if err != nil {
			return nil, false, err
		}
		if student.Role != models.RoleStudent {
			return nil, false, apperror.Invalid("student_id must refer to a student")
		}
		target = student.ID
	} else {
		if caller.Role != models.RoleStudent {
			return nil, false, apperror.Forbidden("only students or the course instructor can start a chat")
		}
		target = caller.UserID
	}

	room, created, err := s.store.GetOrCreateRoom(ctx, course.ID, target, instructorID)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.log.Info("chat: created chatroom %d for course %d (student %d, instructor %d)", room.ID, course.ID, target, instructorID)
	}
	return room, created, nil
}

// participantRoom loads roomID and checks that caller belongs to it.
func (s *Service) participantRoom(ctx context.Context, caller auth.Identity, roomID uint) (*models.ChatRoom, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsParticipant(caller.UserID) {
		return nil, apperror.Forbidden("not a participant of this chat")
	}
	return room, nil
}

func (s *Service) Room(ctx context.Context, caller auth.Identity, roomID uint) (*RoomDetail, error) {
	room, err := s.participantRoom(ctx, caller, roomID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.store.ListMessages(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	return &RoomDetail{Room: room, Messages: msgs}, nil
}

// SendMessage stores content and then broadcasts it like a websocket message. A failed
// broadcast is logged; the message is already stored.
func (s *Service) SendMessage(ctx context.Context, caller auth.Identity, roomID uint, content string) (*models.Message, error) {
	room, err := s.participantRoom(ctx, caller, roomID)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(content)
	if text == "" {
		return nil, apperror.Invalid("empty message")
	}

	msg := &models.Message{ChatRoomID: room.ID, SenderID: caller.UserID, Content: text}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	msg.Sender = models.User{ID: caller.UserID, Username: caller.Username, Role: caller.Role}

	if err := s.publisher.Publish(ctx, room.ID, models.NewMessageEvent(msg, caller.Username)); err != nil {
		s.log.Error("chat: broadcast of message %d in chatroom %d failed: %v", msg.ID, room.ID, err)
	}
	return msg, nil
}

// ListRooms returns the caller's rooms, most unread first, then most recent activity.
func (s *Service) ListRooms(ctx context.Context, caller auth.Identity) ([]RoomListEntry, error) {
	summaries, err := s.store.ListRoomsForUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	SortRooms(summaries)

	out := make([]RoomListEntry, 0, len(summaries))
	for _, sum := range summaries {
		r := sum.Room
		entry := RoomListEntry{
			ChatRoomID:         r.ID,
			CourseID:           r.CourseID,
			CourseTitle:        r.Course.Title,
			StudentID:          r.StudentID,
			StudentUsername:    r.Student.Username,
			InstructorID:       r.InstructorID,
			InstructorUsername: r.Instructor.Username,
			LastMessage:        sum.LastMessage,
			LastMessageAt:      sum.LastMessageAt,
		}
		if r.InstructorID == caller.UserID {
			unread := sum.UnreadCount
			entry.UnreadCount = &unread
		}
		out = append(out, entry)
	}
	return out, nil
}

// MarkRead flips the room's unread student messages. Only the room's instructor may call it.
func (s *Service) MarkRead(ctx context.Context, caller auth.Identity, roomID uint) (int64, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return 0, err
	}
	if room.InstructorID != caller.UserID {
		return 0, apperror.Forbidden("only instructor can mark messages")
	}
	return s.store.MarkStudentMessagesRead(ctx, room.ID)
}

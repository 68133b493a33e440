package storage

import (
	"context"
	"errors"

	"learnhub/backend/internal/apperror"
	"learnhub/backend/internal/models"

	"gorm.io/gorm"
)

func (s *Service) roomQuery(ctx context.Context) *gorm.DB {
	return s.db(ctx).Preload("Course").Preload("Student").Preload("Instructor")
}

// GetRoom loads a room with its course and both participants.
func (s *Service) GetRoom(ctx context.Context, id uint) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := s.roomQuery(ctx).First(&room, id).Error; err != nil {
		return nil, notFound(err, "chat room")
	}
	return &room, nil
}

func (s *Service) FindRoom(ctx context.Context, courseID, studentID, instructorID uint) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := s.roomQuery(ctx).
		Where("course_id = ? AND student_id = ? AND instructor_id = ?", courseID, studentID, instructorID).
		First(&room).Error
	if err != nil {
		return nil, notFound(err, "chat room")
	}
	return &room, nil
}

// GetOrCreateRoom returns the room for the triple, creating it when absent. A concurrent
// insert that loses the unique-index race resolves to the winner's room.
func (s *Service) GetOrCreateRoom(ctx context.Context, courseID, studentID, instructorID uint) (*models.ChatRoom, bool, error) {
	room, err := s.FindRoom(ctx, courseID, studentID, instructorID)
	if err == nil {
		return room, false, nil
	}
	if !apperror.Is(err, apperror.KindNotFound) {
		return nil, false, err
	}

	room = &models.ChatRoom{CourseID: courseID, StudentID: studentID, InstructorID: instructorID}
	if err := s.db(ctx).Omit("Course", "Student", "Instructor").Create(room).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, err := s.FindRoom(ctx, courseID, studentID, instructorID)
			return existing, false, err
		}
		return nil, false, err
	}
	return room, true, nil
}

// CreateMessage persists msg; the database assigns ID and CreatedAt.
func (s *Service) CreateMessage(ctx context.Context, msg *models.Message) error {
	return s.db(ctx).Omit("Sender").Create(msg).Error
}

// ListMessages returns the room's messages in ascending timestamp order.
func (s *Service) ListMessages(ctx context.Context, roomID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db(ctx).Preload("Sender").
		Where("chat_room_id = ?", roomID).
		Order("created_at asc, id asc").
		Find(&msgs).Error
	return msgs, err
}

// ListRoomsForUser returns every room where userID participates with its last message
// and the count of unread student messages. Rows come back in room id order.
func (s *Service) ListRoomsForUser(ctx context.Context, userID uint) ([]models.RoomSummary, error) {
	var rooms []models.ChatRoom
	err := s.roomQuery(ctx).
		Where("student_id = ? OR instructor_id = ?", userID, userID).
		Order("id").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return []models.RoomSummary{}, nil
	}

	ids := make([]uint, len(rooms))
	for i, r := range rooms {
		ids[i] = r.ID
	}

	var unread []struct {
		ChatRoomID uint
		Unread     int64
	}
	err = s.db(ctx).Table("messages").
		Select("messages.chat_room_id, COUNT(*) AS unread").
		Joins("JOIN chat_rooms ON chat_rooms.id = messages.chat_room_id").
		Where("messages.chat_room_id IN ? AND messages.sender_id = chat_rooms.student_id AND messages.is_read = ?", ids, false).
		Group("messages.chat_room_id").
		Scan(&unread).Error
	if err != nil {
		return nil, err
	}
	unreadByRoom := make(map[uint]int64, len(unread))
	for _, u := range unread {
		unreadByRoom[u.ChatRoomID] = u.Unread
	}

	latest := s.db(ctx).Model(&models.Message{}).
		Select("MAX(id)").
		Where("chat_room_id IN ?", ids).
		Group("chat_room_id")
	var last []models.Message
	if err := s.db(ctx).Where("id IN (?)", latest).Find(&last).Error; err != nil {
		return nil, err
	}
	lastByRoom := make(map[uint]models.Message, len(last))
	for _, m := range last {
		lastByRoom[m.ChatRoomID] = m
	}

	out := make([]models.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		sum := models.RoomSummary{Room: r, UnreadCount: unreadByRoom[r.ID]}
		if m, ok := lastByRoom[r.ID]; ok {
			at := m.CreatedAt
			sum.LastMessage = m.Content
			sum.LastMessageAt = &at
		}
		out = append(out, sum)
	}
	return out, nil
}

// MarkStudentMessagesRead flips every unread message sent by the room's student and
// returns how many rows changed.
func (s *Service) MarkStudentMessagesRead(ctx context.Context, roomID uint) (int64, error) {
	studentID := s.db(ctx).Model(&models.ChatRoom{}).Select("student_id").Where("id = ?", roomID)
	res := s.db(ctx).Model(&models.Message{}).
		Where("chat_room_id = ? AND is_read = ? AND sender_id = (?)", roomID, false, studentID).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

package storage

import (
	"context"

	"learnhub/backend/internal/models"
)

func (s *Service) CreateNotifications(ctx context.Context, notes []models.Notification) error {
	if len(notes) == 0 {
		return nil
	}
	return s.db(ctx).Create(&notes).Error
}

// ListNotifications returns the recipient's notifications, newest first.
func (s *Service) ListNotifications(ctx context.Context, recipientID uint) ([]models.Notification, error) {
	var notes []models.Notification
	err := s.db(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at desc, id desc").
		Find(&notes).Error
	return notes, err
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context, recipientID uint) (int64, error) {
	res := s.db(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

package storage

import (
	"context"
	"errors"

	"learnhub/backend/internal/apperror"
	"learnhub/backend/internal/models"

	"gorm.io/gorm"
)

// CreateUser inserts user. A taken username is a Conflict.
func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("username already taken")
		}
		return err
	}
	return nil
}

func (s *Service) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (s *Service) SetUserApproved(ctx context.Context, id uint, approved bool) error {
	res := s.db(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_approved", approved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("user")
	}
	return nil
}

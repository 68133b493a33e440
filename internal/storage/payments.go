package storage

import (
	"context"

	"learnhub/backend/internal/models"
)

func (s *Service) CreatePayment(ctx context.Context, p *models.Payment) error {
	return s.db(ctx).Create(p).Error
}

func (s *Service) GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	var p models.Payment
	if err := s.db(ctx).Where("order_id = ?", orderID).First(&p).Error; err != nil {
		return nil, notFound(err, "payment")
	}
	return &p, nil
}

func (s *Service) SavePayment(ctx context.Context, p *models.Payment) error {
	return s.db(ctx).Save(p).Error
}

package storage

import (
	"context"

	"learnhub/backend/internal/models"

	"gorm.io/gorm"
)

func (s *Service) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	return s.db(ctx).Create(quiz).Error
}

func (s *Service) GetQuiz(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := s.db(ctx).First(&quiz, id).Error; err != nil {
		return nil, notFound(err, "quiz")
	}
	return &quiz, nil
}

// ListQuizzes returns the course's quizzes with their questions and options, oldest first.
func (s *Service) ListQuizzes(ctx context.Context, courseID uint) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := s.db(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("questions.id") }).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB { return db.Order("quiz_options.id") }).
		Where("course_id = ?", courseID).
		Order("id").
		Find(&quizzes).Error
	return quizzes, err
}

// CreateQuestion inserts the question and its options together.
func (s *Service) CreateQuestion(ctx context.Context, q *models.Question) error {
	return s.db(ctx).Create(q).Error
}

func (s *Service) GetQuestion(ctx context.Context, id uint) (*models.Question, error) {
	var q models.Question
	if err := s.db(ctx).First(&q, id).Error; err != nil {
		return nil, notFound(err, "question")
	}
	return &q, nil
}

func (s *Service) CreateQuizAttempt(ctx context.Context, a *models.QuizAttempt) error {
	return s.db(ctx).Create(a).Error
}

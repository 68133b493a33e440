// Package quiz lets instructors write multiple-choice quizzes and grades student answers.
package quiz

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
	GetEnrollment(ctx context.Context, studentID, courseID uint) (*models.Enrollment, error)
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	GetQuiz(ctx context.Context, id uint) (*models.Quiz, error)
	ListQuizzes(ctx context.Context, courseID uint) ([]models.Quiz, error)
	CreateQuestion(ctx context.Context, q *models.Question) error
	GetQuestion(ctx context.Context, id uint) (*models.Question, error)
	CreateQuizAttempt(ctx context.Context, a *models.QuizAttempt) error
}

type Service struct {
	store Store
	log   logging.Logger
	now   func() time.Time
}

func NewService(store Store, log logging.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type NewQuestion struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_option"`
}

type Answer struct {
	QuizID         uint   `json:"quiz"`
	QuestionID     uint   `json:"question"`
	SelectedOption string `json:"selected_option"`
}

// instructedCourse loads courseID and checks the caller teaches it.
func (s *Service) instructedCourse(ctx context.Context, caller auth.Identity, courseID uint) (*models.Course, error) {
	course, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.HasInstructor(caller.UserID) {
		return nil, apperror.Forbidden("only the course instructor can edit quizzes")
	}
	return course, nil
}

// checkEnrolled requires a live enrollment of the caller in courseID.
func (s *Service) checkEnrolled(ctx context.Context, caller auth.Identity, courseID uint) error {
	e, err := s.store.GetEnrollment(ctx, caller.UserID, courseID)
	if apperror.Is(err, apperror.KindNotFound) {
		return apperror.Forbidden("not enrolled in this course")
	}
	if err != nil {
		return err
	}
	if e.Expired(s.now()) {
		return apperror.Forbidden("course access has expired")
	}
	return nil
}

func (s *Service) CreateQuiz(ctx context.Context, caller auth.Identity, courseID uint, title string) (*models.Quiz, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.Invalid("title is required")
	}
	if _, err := s.instructedCourse(ctx, caller, courseID); err != nil {
		return nil, err
	}
	q := &models.Quiz{CourseID: courseID, Title: title, Questions: []models.Question{}}
	if err := s.store.CreateQuiz(ctx, q); err != nil {
		return nil, err
	}
	s.log.Info("quiz: %q created for course %d", q.Title, courseID)
	return q, nil
}

// AddQuestion appends a question with at least two options, one of which is correct.
func (s *Service) AddQuestion(ctx context.Context, caller auth.Identity, quizID uint, in NewQuestion) (*models.Question, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, apperror.Invalid("text is required")
	}
	correct := strings.TrimSpace(in.CorrectOption)
	opts := make([]models.QuizOption, 0, len(in.Options))
	seen := make(map[string]bool, len(in.Options))
	for _, o := range in.Options {
		o = strings.TrimSpace(o)
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		opts = append(opts, models.QuizOption{Text: o})
	}
	if len(opts) < 2 {
		return nil, apperror.Invalid("a question needs at least two distinct options")
	}
	if !seen[correct] {
		return nil, apperror.Invalid("correct_option must be one of the options")
	}

	quiz, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if _, err := s.instructedCourse(ctx, caller, quiz.CourseID); err != nil {
		return nil, err
	}
	q := &models.Question{QuizID: quiz.ID, Text: text, CorrectOption: correct, Options: opts}
	if err := s.store.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// List returns the course's quizzes. Only the instructor sees the correct answers.
func (s *Service) List(ctx context.Context, caller auth.Identity, courseID uint) ([]models.Quiz, error) {
	course, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	teaches := course.HasInstructor(caller.UserID)
	if !teaches {
		if err := s.checkEnrolled(ctx, caller, courseID); err != nil {
			return nil, err
		}
	}
	quizzes, err := s.store.ListQuizzes(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !teaches {
		for i := range quizzes {
			for j := range quizzes[i].Questions {
				quizzes[i].Questions[j].CorrectOption = ""
			}
		}
	}
	return quizzes, nil
}

// Attempt grades one answer and records it.
func (s *Service) Attempt(ctx context.Context, caller auth.Identity, a Answer) (*models.QuizAttempt, error) {
	selected := strings.TrimSpace(a.SelectedOption)
	if a.QuizID == 0 || a.QuestionID == 0 || selected == "" {
		return nil, apperror.Invalid("quiz, question, and selected_option are required")
	}
	if caller.Role != models.RoleStudent {
		return nil, apperror.Forbidden("only students can attempt quizzes")
	}
	question, err := s.store.GetQuestion(ctx, a.QuestionID)
	if err != nil {
		return nil, err
	}
	if question.QuizID != a.QuizID {
		return nil, apperror.Invalid("question does not belong to this quiz")
	}
	quiz, err := s.store.GetQuiz(ctx, a.QuizID)
	if err != nil {
		return nil, err
	}
	if err := s.checkEnrolled(ctx, caller, quiz.CourseID); err != nil {
		return nil, err
	}

	attempt := &models.QuizAttempt{
		StudentID:      caller.UserID,
		QuizID:         quiz.ID,
		QuestionID:     question.ID,
		SelectedOption: selected,
		IsCorrect:      selected == question.CorrectOption,
		AttemptedAt:    s.now(),
	}
	if err := s.store.CreateQuizAttempt(ctx, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// Package account registers new students and instructors.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"learnhub/backend/internal/apperror"
	"learnhub/backend/internal/auth"
	"learnhub/backend/internal/logging"
	"learnhub/backend/internal/models"

	"github.com/go-playground/validator/v10"
)

type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
}

// Emailer queues plain-text mail; notify.Service satisfies it.
type Emailer interface {
	Email(ctx context.Context, u *models.User, subject, text string)
	Link(path string) string
}

// Registration is the sign-up form.
type Registration struct {
	Username string      `json:"username" validate:"required,min=3,max=150"`
	Email    string      `json:"email" validate:"required,email,max=254"`
	Password string      `json:"password" validate:"required,min=8,max=128"`
	Role     models.Role `json:"role"`
}

type Service struct {
	store    Store
	mail     Emailer
	adminTo  string
	validate *validator.Validate
	log      logging.Logger
}

// NewService sends instructor approval requests to adminAddress.
func NewService(store Store, mail Emailer, adminAddress string, log logging.Logger) *Service {
	return &Service{
		store:    store,
		mail:     mail,
		adminTo:  adminAddress,
		validate: validator.New(),
		log:      log,
	}
}

// Register creates the account. Students are active at once; instructors wait for an
// admin, who is emailed about the request.
func (s *Service) Register(ctx context.Context, r Registration) (*models.User, error) {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	if r.Role != models.RoleStudent && r.Role != models.RoleInstructor {
		return nil, apperror.Invalid("role must be student or instructor")
	}
	if err := s.validate.Struct(r); err != nil {
		return nil, apperror.Invalid(fieldMessage(err))
	}

	hash, err := auth.HashPassword(r.Password)
	if err != nil {
		return nil, apperror.Internal("hash password", err)
	}
	user := &models.User{
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: hash,
		Role:         r.Role,
		IsActive:     true,
		IsApproved:   r.Role == models.RoleStudent,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("account: registered %s %q (id %d)", user.Role, user.Username, user.ID)

	if user.Role == models.RoleStudent {
		s.mail.Email(ctx, user, "Welcome to LearnHub",
			fmt.Sprintf("Hi %s,\n\nYour student account is ready. Log in at %s", user.Username, s.mail.Link("/login")))
	} else {
		admin := &models.User{Username: "admin", Email: s.adminTo}
		s.mail.Email(ctx, admin, "Instructor Approval Pending",
			fmt.Sprintf("Instructor %s (%s) registered and is waiting for approval.", user.Username, user.Email))
	}
	return user, nil
}

// fieldMessage reports the first failed field in a form the client can show.
func fieldMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	f := verrs[0]
	name := strings.ToLower(f.Field())
	switch f.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return name + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, f.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, f.Param())
	}
	return name + " is invalid"
}

// Package notify records in-app notifications and queues the matching emails.
package notify

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"learnhub/backend/internal/logging"
	"learnhub/backend/internal/mailer"
	"learnhub/backend/internal/models"
	"learnhub/backend/internal/queue"
)

type Store interface {
	CreateNotifications(ctx context.Context, notes []models.Notification) error
	ListNotifications(ctx context.Context, recipientID uint) ([]models.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, recipientID uint) (int64, error)
}

// Notice is what every recipient of one Notify call gets.
type Notice struct {
	ActorID *uint
	Title   string
	Message string
	Type    models.NotificationType
	// URL is a frontend path such as "/courses/3/live".
	URL string
}

type Service struct {
	store       Store
	mail        queue.Dispatcher
	frontendURL string
	log         logging.Logger
}

func NewService(store Store, mail queue.Dispatcher, frontendURL string, log logging.Logger) *Service {
	return &Service{
		store:       store,
		mail:        mail,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log,
	}
}

// Notify stores one notification per recipient, then queues an email to each recipient
// with an address. Only the store write can fail the call.
func (s *Service) Notify(ctx context.Context, recipients []models.User, n Notice) error {
	if len(recipients) == 0 {
		return nil
	}
	if n.Type == "" {
		n.Type = models.NotificationGeneric
	}
	notes := make([]models.Notification, 0, len(recipients))
	for _, u := range recipients {
		notes = append(notes, models.Notification{
			RecipientID: u.ID,
			ActorID:     n.ActorID,
			Title:       n.Title,
			Message:     n.Message,
			Type:        n.Type,
			URL:         n.URL,
		})
	}
	if err := s.store.CreateNotifications(ctx, notes); err != nil {
		return fmt.Errorf("notify: store notifications: %w", err)
	}

	text := n.Message
	if n.URL != "" {
		text += "\n\n" + s.Link(n.URL)
	}
	for i := range recipients {
		s.Email(ctx, &recipients[i], n.Title, text)
	}
	return nil
}

// Email queues a plain-text email to u. Dispatch failures are logged, not returned.
func (s *Service) Email(ctx context.Context, u *models.User, subject, text string) {
	if u.Email == "" {
		return
	}
	msg := mailer.Message{
		To:      mail.Address{Name: u.Username, Address: u.Email},
		Subject: subject,
		Text:    text,
	}
	if err := s.mail.DispatchEmail(ctx, msg); err != nil {
		s.log.Error("notify: queueing %q for user %d failed: %v", subject, u.ID, err)
	}
}

// Link makes path absolute against the frontend base URL.
func (s *Service) Link(path string) string {
	return s.frontendURL + "/" + strings.TrimLeft(path, "/")
}

func (s *Service) List(ctx context.Context, recipientID uint) ([]models.Notification, error) {
	return s.store.ListNotifications(ctx, recipientID)
}

func (s *Service) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	return s.store.MarkAllNotificationsRead(ctx, recipientID)
}

package mailer

import (
	"context"
	"sync"

	"learnhub/backend/internal/logging"
)

// Console logs messages instead of sending them and keeps a copy. Used in dev and tests.
type Console struct {
	log logging.Logger

	mu   sync.Mutex
	sent []Message
}

var _ Sender = (*Console)(nil)

func NewConsole(log logging.Logger) *Console {
	return &Console{log: log}
}

func (c *Console) Send(_ context.Context, msg Message) error {
	c.log.Info("mail: to=%s subject=%q\n%s", msg.To.String(), msg.Subject, msg.Text)
	c.mu.Lock()
	c.sent = append(c.sent, msg)
	c.mu.Unlock()
	return nil
}

// Sent returns a copy of every message sent so far.
func (c *Console) Sent() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.sent...)
}

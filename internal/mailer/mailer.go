// Package mailer delivers transactional email.
package mailer

import (
	"context"
	"net/mail"
)

// Message is a single outbound email.
type Message struct {
	To      mail.Address `json:"to"`
	Subject string       `json:"subject"`
	Text    string       `json:"text"`
	HTML    string       `json:"html,omitempty"`
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

package mailer_test

import (
	"context"
	"net/mail"
	"testing"

	"learnhub/backend/internal/apperror"
	"learnhub/backend/internal/logging"
	"learnhub/backend/internal/mailer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleRecordsMessages(t *testing.T) {
	c := mailer.NewConsole(logging.Discard())
	msg := mailer.Message{
		To:      mail.Address{Name: "Ann", Address: "ann@example.com"},
		Subject: "Welcome",
		Text:    "hello",
	}

	require.NoError(t, c.Send(context.Background(), msg))

	sent := c.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, msg, sent[0])
}

func TestSendGridRequiresRecipient(t *testing.T) {
	s := mailer.NewSendGrid("key", "LearnHub", "noreply@example.com")

	err := s.Send(context.Background(), mailer.Message{Subject: "x"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

package queue

import (
	"context"
	"errors"
	"net/mail"
	"testing"

	"learnhub/backend/internal/logging"
	"learnhub/backend/internal/mailer"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSender struct{}

func (failingSender) Send(context.Context, mailer.Message) error {
	return errors.New("smtp down")
}

func testMessage() mailer.Message {
	return mailer.Message{
		To:      mail.Address{Name: "Ann", Address: "ann@example.com"},
		Subject: "Enrollment confirmed",
		Text:    "You are enrolled in Go 101.",
	}
}

func TestWorkerHandleSendEmail(t *testing.T) {
	console := mailer.NewConsole(logging.Discard())
	w := &Worker{sender: console, log: logging.Discard()}

	payload, err := encodeEmail(testMessage())
	require.NoError(t, err)

	require.NoError(t, w.handleSendEmail(context.Background(), asynq.NewTask(TaskSendEmail, payload)))
	assert.Equal(t, []mailer.Message{testMessage()}, console.Sent())
}

func TestWorkerSkipsRetryOnBadPayload(t *testing.T) {
	w := &Worker{sender: mailer.NewConsole(logging.Discard()), log: logging.Discard()}

	err := w.handleSendEmail(context.Background(), asynq.NewTask(TaskSendEmail, []byte("{not json")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestWorkerReturnsSendErrorForRetry(t *testing.T) {
	w := &Worker{sender: failingSender{}, log: logging.Discard()}
	payload, err := encodeEmail(testMessage())
	require.NoError(t, err)

	err = w.handleSendEmail(context.Background(), asynq.NewTask(TaskSendEmail, payload))
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestInlineDispatcher(t *testing.T) {
	console := mailer.NewConsole(logging.Discard())
	d := NewInlineDispatcher(console, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.DispatchEmail(ctx, testMessage()))
	cancel()
	d.Wait()

	assert.Len(t, console.Sent(), 1)
}

func TestParseRedisURL(t *testing.T) {
	opt, err := ParseRedisURL("redis://localhost:6379/2")
	require.NoError(t, err)
	client, ok := opt.(asynq.RedisClientOpt)
	require.True(t, ok)
	assert.Equal(t, "localhost:6379", client.Addr)
	assert.Equal(t, 2, client.DB)

	_, err = ParseRedisURL("http://nope")
	assert.Error(t, err)
}

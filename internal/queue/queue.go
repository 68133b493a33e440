// Package queue moves outbound email off the request path. With Redis configured tasks
// go through asynq; otherwise they are sent from a background goroutine.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"learnhub/backend/internal/mailer"
)

// TaskSendEmail is the asynq task type carrying one mailer.Message.
const TaskSendEmail = "email:send"

// Dispatcher hands an email off for delivery. It never waits for the send itself.
type Dispatcher interface {
	DispatchEmail(ctx context.Context, msg mailer.Message) error
}

func encodeEmail(msg mailer.Message) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("queue: encode %s: %w", TaskSendEmail, err)
	}
	return payload, nil
}

func decodeEmail(payload []byte) (mailer.Message, error) {
	var msg mailer.Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, fmt.Errorf("queue: decode %s: %w", TaskSendEmail, err)
	}
	return msg, nil
}

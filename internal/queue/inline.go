package queue

import (
	"context"
	"sync"

	"learnhub/backend/internal/logging"
	"learnhub/backend/internal/mailer"
)

// InlineDispatcher sends each email from its own goroutine. Failures are logged.
type InlineDispatcher struct {
	sender mailer.Sender
	log    logging.Logger
	wg     sync.WaitGroup
}

var _ Dispatcher = (*InlineDispatcher)(nil)

func NewInlineDispatcher(sender mailer.Sender, log logging.Logger) *InlineDispatcher {
	return &InlineDispatcher{sender: sender, log: log}
}

func (d *InlineDispatcher) DispatchEmail(ctx context.Context, msg mailer.Message) error {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.sender.Send(context.WithoutCancel(ctx), msg); err != nil {
			d.log.Error("queue: sending %q to %s failed: %v", msg.Subject, msg.To.Address, err)
		}
	}()
	return nil
}

// Wait blocks until every dispatched email has been attempted.
func (d *InlineDispatcher) Wait() {
	d.wg.Wait()
}

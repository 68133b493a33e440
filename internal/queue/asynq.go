package queue

import (
	"context"
	"fmt"
	"time"

	"learnhub/backend/internal/logging"
	"learnhub/backend/internal/mailer"

	"github.com/hibiken/asynq"
)

const (
	emailQueue    = "email"
	emailMaxRetry = 5
	emailTimeout  = 30 * time.Second
)

// ParseRedisURL turns a redis:// URL into asynq connection options.
func ParseRedisURL(redisURL string) (asynq.RedisConnOpt, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("queue: parse redis url: %w", err)
	}
	return opt, nil
}

// AsynqDispatcher enqueues email tasks in Redis.
type AsynqDispatcher struct {
	client *asynq.Client
}

var _ Dispatcher = (*AsynqDispatcher)(nil)

func NewAsynqDispatcher(opt asynq.RedisConnOpt) *AsynqDispatcher {
	return &AsynqDispatcher{client: asynq.NewClient(opt)}
}

func (d *AsynqDispatcher) DispatchEmail(ctx context.Context, msg mailer.Message) error {
	payload, err := encodeEmail(msg)
	if err != nil {
		return err
	}
	task := asynq.NewTask(TaskSendEmail, payload)
	if _, err := d.client.EnqueueContext(ctx, task,
		asynq.Queue(emailQueue),
		asynq.MaxRetry(emailMaxRetry),
		asynq.Timeout(emailTimeout),
	); err != nil {
		return fmt.Errorf("queue: enqueue %s: %w", TaskSendEmail, err)
	}
	return nil
}

func (d *AsynqDispatcher) Close() error {
	return d.client.Close()
}

// Worker consumes email tasks and hands them to a mailer.Sender.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	sender mailer.Sender
	log    logging.Logger
}

func NewWorker(opt asynq.RedisConnOpt, concurrency int, sender mailer.Sender, log logging.Logger) *Worker {
	w := &Worker{sender: sender, log: log, mux: asynq.NewServeMux()}
	w.server = asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{emailQueue: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error("queue: task %s failed: %v", task.Type(), err)
		}),
	})
	w.mux.HandleFunc(TaskSendEmail, w.handleSendEmail)
	return w
}

func (w *Worker) handleSendEmail(ctx context.Context, t *asynq.Task) error {
	msg, err := decodeEmail(t.Payload())
	if err != nil {
		// a payload that cannot be decoded will never succeed
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	if err := w.sender.Send(ctx, msg); err != nil {
		return err
	}
	w.log.Info("queue: sent %q to %s", msg.Subject, msg.To.Address)
	return nil
}

// Run processes tasks until ctx is canceled, then shuts the server down.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("queue: start worker: %w", err)
	}
	<-ctx.Done()
	w.server.Shutdown()
	return nil
}

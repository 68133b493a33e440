// Package scheduler runs periodic background jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"learnhub/backend/internal/livesession"
	"learnhub/backend/internal/logging"
	"learnhub/backend/internal/models"
	"learnhub/backend/internal/notify"

	"github.com/robfig/cron/v3"
)

const (
	reminderSpec    = "@every 1m"
	reminderTimeout = 50 * time.Second
)

type Store interface {
	DueReminders(ctx context.Context, from, to time.Time) ([]models.LiveSession, error)
	MarkReminderSent(ctx context.Context, sessionID uint, at time.Time) error
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	EnrolledStudents(ctx context.Context, courseID uint) ([]models.User, error)
}

type Notifier interface {
	Notify(ctx context.Context, recipients []models.User, n notify.Notice) error
}

// Reminders tells enrolled students that a live session is about to start.
type Reminders struct {
	store    Store
	notifier Notifier
	lead     time.Duration
	now      func() time.Time
	log      logging.Logger
}

func NewReminders(store Store, notifier Notifier, lead time.Duration, log logging.Logger) *Reminders {
	return &Reminders{store: store, notifier: notifier, lead: lead, now: time.Now, log: log}
}

func (r *Reminders) WithClock(now func() time.Time) *Reminders {
	r.now = now
	return r
}

// RunOnce reminds every session starting within the lead time that has not been reminded.
// It returns how many sessions were reminded.
func (r *Reminders) RunOnce(ctx context.Context) (int, error) {
	now := r.now().UTC()
	due, err := r.store.DueReminders(ctx, now, now.Add(r.lead))
	if err != nil {
		return 0, fmt.Errorf("scheduler: due reminders: %w", err)
	}
	sent := 0
	for i := range due {
		ls := &due[i]
		if err := r.remind(ctx, ls); err != nil {
			r.log.Error("scheduler: reminder for session %d: %v", ls.ID, err)
			continue
		}
		if err := r.store.MarkReminderSent(ctx, ls.ID, now); err != nil {
			r.log.Error("scheduler: stamping reminder for session %d: %v", ls.ID, err)
			continue
		}
		sent++
	}
	return sent, nil
}

func (r *Reminders) remind(ctx context.Context, ls *models.LiveSession) error {
	course, err := r.store.GetCourse(ctx, ls.CourseID)
	if err != nil {
		return err
	}
	students, err := r.store.EnrolledStudents(ctx, course.ID)
	if err != nil {
		return err
	}
	actor := ls.InstructorID
	return r.notifier.Notify(ctx, students, notify.Notice{
		ActorID: &actor,
		Title:   "Live class starting soon",
		Message: fmt.Sprintf("%s for %s starts at %s", ls.Topic, course.Title, ls.StartTime.UTC().Format(time.Kitchen+" MST")),
		Type:    models.NotificationLive,
		URL:     livesession.CoursePath(course.ID),
	})
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cron *cron.Cron
	log  logging.Logger
}

func New(reminders *Reminders, log logging.Logger) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger), cron.Recover(cron.DefaultLogger)))
	_, err := c.AddFunc(reminderSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reminderTimeout)
		defer cancel()
		n, err := reminders.RunOnce(ctx)
		if err != nil {
			log.Error("%v", err)
			return
		}
		if n > 0 {
			log.Info("scheduler: sent %d live-session reminders", n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scheduler: add reminder job: %w", err)
	}
	return &Scheduler{cron: c, log: log}, nil
}

// Run starts the jobs and blocks until ctx is canceled, then waits for running jobs.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.log.Info("scheduler: started (%s reminders)", reminderSpec)
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"learnhub/backend/internal/logging"
	"learnhub/backend/internal/models"
	"learnhub/backend/internal/notify"
	"learnhub/backend/internal/scheduler"
	"learnhub/backend/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notify.Notice
	counts  []int
}

func (n *recordingNotifier) Notify(_ context.Context, recipients []models.User, notice notify.Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	n.counts = append(n.counts, len(recipients))
	return nil
}

func TestRemindersRunOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := storagetest.Open(t)
	inst := storagetest.Instructor(t, s, "irene")
	course := storagetest.Course(t, s, "Go 101", inst)
	storagetest.Enroll(t, s, storagetest.Student(t, s, "ann"), course, now)
	storagetest.Enroll(t, s, storagetest.Student(t, s, "bob"), course, now)

	for _, start := range []time.Time{now.Add(10 * time.Minute), now.Add(2 * time.Hour), now.Add(-time.Minute)} {
		require.NoError(t, s.CreateLiveSession(ctx, &models.LiveSession{
			CourseID: course.ID, InstructorID: inst.ID, Topic: "Q&A", StartTime: start, DurationMinutes: 60,
		}))
	}

	n := &recordingNotifier{}
	r := scheduler.NewReminders(s, n, 15*time.Minute, logging.Discard()).WithClock(func() time.Time { return now })

	sent, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, n.notices, 1)
	assert.Equal(t, models.NotificationLive, n.notices[0].Type)
	assert.Equal(t, []int{2}, n.counts)

	sent, err = r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent, "already reminded")
}

func TestSchedulerStopsWithContext(t *testing.T) {
	s := storagetest.Open(t)
	r := scheduler.NewReminders(s, &recordingNotifier{}, time.Minute, logging.Discard())
	sch, err := scheduler.New(r, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sch.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

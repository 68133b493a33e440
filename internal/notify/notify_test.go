package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"learnhub/backend/internal/logging"
	"learnhub/backend/internal/mailer"
	"learnhub/backend/internal/models"
	"learnhub/backend/internal/notify"
	"learnhub/backend/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	mu   sync.Mutex
	msgs []mailer.Message
	err  error
}

func (d *recordingDispatcher) DispatchEmail(_ context.Context, msg mailer.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.msgs = append(d.msgs, msg)
	return nil
}

func TestNotifyStoresAndQueuesEmail(t *testing.T) {
	ctx := context.Background()
	s := storagetest.Open(t)
	ann := storagetest.Student(t, s, "ann")
	bob := storagetest.Student(t, s, "bob")
	inst := storagetest.Instructor(t, s, "irene")
	d := &recordingDispatcher{}
	svc := notify.NewService(s, d, "https://learn.example.com/", logging.Discard())

	err := svc.Notify(ctx, []models.User{*ann, *bob}, notify.Notice{
		ActorID: &inst.ID,
		Title:   "New live session",
		Message: "Go 101: Q&A starts tomorrow.",
		Type:    models.NotificationLive,
		URL:     "/courses/1/live",
	})
	require.NoError(t, err)

	notes, err := svc.List(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationLive, notes[0].Type)
	assert.False(t, notes[0].IsRead)
	require.NotNil(t, notes[0].ActorID)
	assert.Equal(t, inst.ID, *notes[0].ActorID)

	require.Len(t, d.msgs, 2)
	assert.Equal(t, "ann@example.com", d.msgs[0].To.Address)
	assert.Contains(t, d.msgs[0].Text, "https://learn.example.com/courses/1/live")

	n, err := svc.MarkAllRead(ctx, ann.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = svc.MarkAllRead(ctx, ann.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNotifyDispatchFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	s := storagetest.Open(t)
	ann := storagetest.Student(t, s, "ann")
	svc := notify.NewService(s, &recordingDispatcher{err: errors.New("redis down")}, "http://localhost", logging.Discard())

	require.NoError(t, svc.Notify(ctx, []models.User{*ann}, notify.Notice{Title: "hi", Message: "hello"}))

	notes, err := svc.List(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationGeneric, notes[0].Type)
}

func TestNotifyNoRecipients(t *testing.T) {
	s := storagetest.Open(t)
	d := &recordingDispatcher{}
	svc := notify.NewService(s, d, "http://localhost", logging.Discard())

	require.NoError(t, svc.Notify(context.Background(), nil, notify.Notice{Title: "x"}))
	assert.Empty(t, d.msgs)
}

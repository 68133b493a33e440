package livesession_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"learnhub/backend/internal/apperror"
	"learnhub/backend/internal/auth"
	"learnhub/backend/internal/config"
	"learnhub/backend/internal/livesession"
	"learnhub/backend/internal/logging"
	"learnhub/backend/internal/models"
	"learnhub/backend/internal/notify"
	"learnhub/backend/internal/storage"
	"learnhub/backend/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

type fakeMeetings struct {
	calls []livesession.MeetingRequest
	err   error
}

func (f *fakeMeetings) CreateMeeting(_ context.Context, req livesession.MeetingRequest) (*livesession.Meeting, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, req)
	return &livesession.Meeting{ID: "m-1", JoinURL: "https://meet.example/j/1", StartURL: "https://meet.example/s/1"}, nil
}

type recordingNotifier struct {
	mu         sync.Mutex
	recipients []models.User
	notices    []notify.Notice
}

func (n *recordingNotifier) Notify(_ context.Context, recipients []models.User, notice notify.Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.recipients = append(n.recipients, recipients...)
	n.notices = append(n.notices, notice)
	return nil
}

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store      *storage.Service
	svc        *livesession.Service
	meetings   *fakeMeetings
	notifier   *recordingNotifier
	instructor *models.User
	student    *models.User
	course     *models.Course
}

func newFixture(t *testing.T) *fixture {
	s := storagetest.Open(t)
	inst := storagetest.Instructor(t, s, "irene")
	stu := storagetest.Student(t, s, "ann")
	course := storagetest.Course(t, s, "Go 101", inst)
	storagetest.Enroll(t, s, stu, course, now.Add(-48*time.Hour))

	meetings := &fakeMeetings{}
	notifier := &recordingNotifier{}
	opts := livesession.Options{
		Instructor:       config.Window{EndedWithin: config.InstructorEndedWithin, UpcomingWithin: config.UpcomingWithin},
		Student:          config.Window{EndedWithin: config.StudentEndedWithin, UpcomingWithin: config.UpcomingWithin},
		MaxSessionLength: config.DefaultMaxSessionLength,
	}
	svc := livesession.NewService(s, meetings, notifier, opts, logging.Discard()).
		WithClock(func() time.Time { return now })
	return &fixture{store: s, svc: svc, meetings: meetings, notifier: notifier, instructor: inst, student: stu, course: course}
}

func (f *fixture) seed(t *testing.T, topic string, start time.Time, minutes int) *models.LiveSession {
	ls := &models.LiveSession{
		CourseID:        f.course.ID,
		InstructorID:    f.instructor.ID,
		Topic:           topic,
		StartTime:       start,
		DurationMinutes: minutes,
		JoinURL:         "https://meet.example/j/" + topic,
		StartURL:        "https://meet.example/s/" + topic,
	}
	require.NoError(t, f.store.CreateLiveSession(ctx, ls))
	return ls
}

func topics(views []livesession.View) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Topic)
	}
	return out
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	start := now.Add(2 * time.Hour)

	v, err := f.svc.Create(ctx, auth.IdentityOf(f.instructor), f.course.ID, livesession.CreateInput{StartTime: start})
	require.NoError(t, err)

	assert.Equal(t, "Live Session", v.Topic)
	assert.Equal(t, config.DefaultSessionDuration, v.Duration)
	assert.Equal(t, livesession.StatusUpcoming, v.Status)
	assert.Equal(t, "m-1", v.MeetingID)
	assert.Equal(t, "https://meet.example/s/1", v.StartURL)

	require.Len(t, f.meetings.calls, 1)
	assert.Equal(t, start, f.meetings.calls[0].StartTime)

	require.Len(t, f.notifier.notices, 1)
	assert.Equal(t, models.NotificationLive, f.notifier.notices[0].Type)
	assert.Equal(t, livesession.CoursePath(f.course.ID), f.notifier.notices[0].URL)
	require.Len(t, f.notifier.recipients, 1)
	assert.Equal(t, f.student.ID, f.notifier.recipients[0].ID)

	stored, err := f.store.GetLiveSession(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://meet.example/j/1", stored.JoinURL)
}

func TestCreate_NotOwner(t *testing.T) {
	f := newFixture(t)
	other := storagetest.Instructor(t, f.store, "oscar")

	_, err := f.svc.Create(ctx, auth.IdentityOf(other), f.course.ID, livesession.CreateInput{StartTime: now})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = f.svc.Create(ctx, auth.IdentityOf(f.instructor), 9999, livesession.CreateInput{StartTime: now})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Empty(t, f.meetings.calls)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	caller := auth.IdentityOf(f.instructor)

	_, err := f.svc.Create(ctx, caller, f.course.ID, livesession.CreateInput{Topic: "x"})
	assert.True(t, apperror.Is(err, apperror.KindValidation), "missing start_time")

	_, err = f.svc.Create(ctx, caller, f.course.ID, livesession.CreateInput{StartTime: now, DurationMinutes: -5})
	assert.True(t, apperror.Is(err, apperror.KindValidation), "negative duration")

	_, err = f.svc.Create(ctx, caller, f.course.ID, livesession.CreateInput{StartTime: now, DurationMinutes: 25 * 60})
	assert.True(t, apperror.Is(err, apperror.KindValidation), "longer than the max session length")
	assert.Empty(t, f.meetings.calls)
}

func TestCreate_UpstreamFailureStoresNothing(t *testing.T) {
	f := newFixture(t)
	f.meetings.err = apperror.Upstream("zoom", 401, errors.New("invalid token"))

	_, err := f.svc.Create(ctx, auth.IdentityOf(f.instructor), f.course.ID, livesession.CreateInput{StartTime: now})
	assert.True(t, apperror.Is(err, apperror.KindUpstream))

	views, err := f.svc.ListForInstructor(ctx, auth.IdentityOf(f.instructor), f.course.ID)
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.Empty(t, f.notifier.notices)
}

func TestListForInstructor(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "ended-2h", now.Add(-3*time.Hour), 60)
	f.seed(t, "ended-4h", now.Add(-5*time.Hour), 60)
	f.seed(t, "live", now.Add(-10*time.Minute), 60)
	f.seed(t, "soon", now.Add(time.Hour), 60)
	f.seed(t, "next-week", now.Add(7*24*time.Hour), 60)
	f.seed(t, "long-running", now.Add(-6*time.Hour), 8*60)

	views, err := f.svc.ListForInstructor(ctx, auth.IdentityOf(f.instructor), f.course.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"soon", "live", "ended-2h", "long-running"}, topics(views))
	assert.Equal(t, livesession.StatusUpcoming, views[0].Status)
	assert.Equal(t, livesession.StatusLive, views[1].Status)
	assert.Equal(t, livesession.StatusEnded, views[2].Status)
	assert.Equal(t, livesession.StatusLive, views[3].Status)
	assert.NotEmpty(t, views[0].StartURL)
}

func TestListForInstructor_OnlyOwnSessions(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "mine", now.Add(time.Hour), 60)
	other := storagetest.Instructor(t, f.store, "oscar")

	views, err := f.svc.ListForInstructor(ctx, auth.IdentityOf(other), f.course.ID)
	require.NoError(t, err)
	assert.Empty(t, views)

	_, err = f.svc.ListForInstructor(ctx, auth.IdentityOf(f.student), f.course.ID)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
}

func TestListForStudent(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "ended-90m", now.Add(-150*time.Minute), 60)
	f.seed(t, "ended-150m", now.Add(-210*time.Minute), 60)
	f.seed(t, "live", now.Add(-10*time.Minute), 60)
	f.seed(t, "tomorrow", now.Add(23*time.Hour), 60)

	views, err := f.svc.ListForStudent(ctx, f.course.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"ended-90m", "live", "tomorrow"}, topics(views))
	for _, v := range views {
		assert.Empty(t, v.StartURL)
	}

	_, err = f.svc.ListForStudent(ctx, 9999)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ls := f.seed(t, "x", now.Add(time.Hour), 60)
	other := storagetest.Instructor(t, f.store, "oscar")

	err := f.svc.Delete(ctx, auth.IdentityOf(other), f.course.ID, ls.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	require.NoError(t, f.svc.Delete(ctx, auth.IdentityOf(f.instructor), f.course.ID, ls.ID))

	err = f.svc.Delete(ctx, auth.IdentityOf(f.instructor), f.course.ID, ls.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ls := f.seed(t, "x", now.Add(time.Hour), 60)

	url, err := f.svc.Register(ctx, auth.IdentityOf(f.student), ls.ID)
	require.NoError(t, err)
	assert.Equal(t, ls.JoinURL, url)

	_, err = f.svc.Register(ctx, auth.IdentityOf(f.instructor), ls.ID)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))

	_, err = f.svc.Register(ctx, auth.IdentityOf(f.student), 9999)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	noLink := &models.LiveSession{CourseID: f.course.ID, InstructorID: f.instructor.ID, Topic: "nolink", StartTime: now, DurationMinutes: 30}
	require.NoError(t, f.store.CreateLiveSession(ctx, noLink))
	_, err = f.svc.Register(ctx, auth.IdentityOf(f.student), noLink.ID)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

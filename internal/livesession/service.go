package livesession

import (
	"context"
	"fmt"
	"strings"
	"time"

	"learnhub/backend/internal/apperror"
	"learnhub/backend/internal/auth"
	"learnhub/backend/internal/config"
	"learnhub/backend/internal/logging"
	"learnhub/backend/internal/models"
	"learnhub/backend/internal/notify"
	"learnhub/backend/internal/storage"
)

type Store interface {
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	CreateLiveSession(ctx context.Context, session *models.LiveSession) error
	GetLiveSession(ctx context.Context, id uint) (*models.LiveSession, error)
	DeleteLiveSession(ctx context.Context, id, courseID, instructorID uint) error
	ListLiveSessions(ctx context.Context, q storage.LiveSessionQuery) ([]models.LiveSession, error)
	EnrolledStudents(ctx context.Context, courseID uint) ([]models.User, error)
}

type Notifier interface {
	Notify(ctx context.Context, recipients []models.User, n notify.Notice) error
}

// MeetingRequest is what a provider needs to schedule a meeting.
type MeetingRequest struct {
	Topic           string
	StartTime       time.Time
	DurationMinutes int
}

type Meeting struct {
	ID       string
	JoinURL  string
	StartURL string
}

// MeetingProvider creates meetings on an external video platform.
type MeetingProvider interface {
	CreateMeeting(ctx context.Context, req MeetingRequest) (*Meeting, error)
}

type Options struct {
	Instructor config.Window
	Student    config.Window
	// MaxSessionLength bounds how far back the start_time prefilter looks.
	MaxSessionLength time.Duration
}

type Service struct {
	store    Store
	meetings MeetingProvider
	notifier Notifier
	opts     Options
	now      func() time.Time
	log      logging.Logger
}

func NewService(store Store, meetings MeetingProvider, notifier Notifier, opts Options, log logging.Logger) *Service {
	return &Service{
		store:    store,
		meetings: meetings,
		notifier: notifier,
		opts:     opts,
		now:      time.Now,
		log:      log,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// View is a session as returned to clients, with its status computed at read time.
type View struct {
	ID        uint      `json:"id"`
	Topic     string    `json:"topic"`
	StartTime time.Time `json:"start_time"`
	Duration  int       `json:"duration"`
	Status    Status    `json:"status"`
	JoinURL   string    `json:"join_url"`
	StartURL  string    `json:"start_url,omitempty"`
	MeetingID string    `json:"zoom_meeting_id"`
}

func newView(now time.Time, ls *models.LiveSession, withStartURL bool) View {
	v := View{
		ID:        ls.ID,
		Topic:     ls.Topic,
		StartTime: ls.StartTime.UTC(),
		Duration:  ls.DurationMinutes,
		Status:    Classify(now, ls.StartTime, ls.Duration()),
		JoinURL:   ls.JoinURL,
		MeetingID: ls.MeetingID,
	}
	if withStartURL {
		v.StartURL = ls.StartURL
	}
	return v
}

type listQuery struct {
	courseID     uint
	instructorID uint
	window       config.Window
	newestFirst  bool
	withStartURL bool
}

func (s *Service) list(ctx context.Context, q listQuery) ([]View, error) {
	now := s.now().UTC()
	from, to := q.window.Bounds(now, s.opts.MaxSessionLength)
	sessions, err := s.store.ListLiveSessions(ctx, storage.LiveSessionQuery{
		CourseID:     q.courseID,
		InstructorID: q.instructorID,
		StartFrom:    from,
		StartTo:      to,
		NewestFirst:  q.newestFirst,
	})
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(sessions))
	for i := range sessions {
		ls := &sessions[i]
		if !q.window.Visible(now, ls.StartTime, ls.EndTime()) {
			continue
		}
		views = append(views, newView(now, ls, q.withStartURL))
	}
	return views, nil
}

// ListForInstructor returns the caller's own sessions of the course, newest first.
func (s *Service) ListForInstructor(ctx context.Context, caller auth.Identity, courseID uint) ([]View, error) {
	if caller.Role != models.RoleInstructor {
		return nil, apperror.Forbidden("only instructors can manage live sessions")
	}
	if _, err := s.store.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.list(ctx, listQuery{
		courseID:     courseID,
		instructorID: caller.UserID,
		window:       s.opts.Instructor,
		newestFirst:  true,
		withStartURL: true,
	})
}

// ListForStudent returns the course's sessions in start order, without host links.
func (s *Service) ListForStudent(ctx context.Context, courseID uint) ([]View, error) {
	if _, err := s.store.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.list(ctx, listQuery{courseID: courseID, window: s.opts.Student})
}

type CreateInput struct {
	Topic           string    `json:"topic"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration"`
}

// Create schedules a meeting for a course the caller teaches, stores it and notifies the
// enrolled students. A course the caller does not teach is reported as not found.
func (s *Service) Create(ctx context.Context, caller auth.Identity, courseID uint, in CreateInput) (*View, error) {
	course, err := s.store.GetCourse(ctx, courseID)
	if err != nil || !course.HasInstructor(caller.UserID) {
		if err != nil && !apperror.Is(err, apperror.KindNotFound) {
			return nil, err
		}
		return nil, apperror.NotFound("course")
	}

	in.Topic = strings.TrimSpace(in.Topic)
	if in.Topic == "" {
		in.Topic = "Live Session"
	}
	if in.DurationMinutes == 0 {
		in.DurationMinutes = config.DefaultSessionDuration
	}
	if in.StartTime.IsZero() {
		return nil, apperror.Invalid("start_time is required")
	}
	if in.DurationMinutes < 0 || time.Duration(in.DurationMinutes)*time.Minute > s.opts.MaxSessionLength {
		return nil, apperror.Invalid(fmt.Sprintf("duration must be between 1 and %d minutes", int(s.opts.MaxSessionLength.Minutes())))
	}

	meeting, err := s.meetings.CreateMeeting(ctx, MeetingRequest{
		Topic:           in.Topic,
		StartTime:       in.StartTime.UTC(),
		DurationMinutes: in.DurationMinutes,
	})
	if err != nil {
		return nil, err
	}

	ls := &models.LiveSession{
		CourseID:        course.ID,
		InstructorID:    caller.UserID,
		Topic:           in.Topic,
		StartTime:       in.StartTime.UTC(),
		DurationMinutes: in.DurationMinutes,
		MeetingID:       meeting.ID,
		JoinURL:         meeting.JoinURL,
		StartURL:        meeting.StartURL,
	}
	if err := s.store.CreateLiveSession(ctx, ls); err != nil {
		s.log.Error("livesession: meeting %s created but not stored: %v", meeting.ID, err)
		return nil, err
	}
	s.log.Info("livesession: session %d scheduled for course %d at %s", ls.ID, course.ID, ls.StartTime.Format(time.RFC3339))

	s.announce(ctx, course, ls)

	v := newView(s.now().UTC(), ls, true)
	return &v, nil
}

func (s *Service) announce(ctx context.Context, course *models.Course, ls *models.LiveSession) {
	students, err := s.store.EnrolledStudents(ctx, course.ID)
	if err != nil {
		s.log.Error("livesession: loading students of course %d: %v", course.ID, err)
		return
	}
	actor := ls.InstructorID
	err = s.notifier.Notify(ctx, students, notify.Notice{
		ActorID: &actor,
		Title:   "Live class scheduled",
		Message: fmt.Sprintf("Live class for %s starts at %s", course.Title, ls.StartTime.UTC().Format(time.RFC1123)),
		Type:    models.NotificationLive,
		URL:     CoursePath(course.ID),
	})
	if err != nil {
		s.log.Error("livesession: notifying students of session %d: %v", ls.ID, err)
	}
}

// CoursePath is the frontend page listing a course's live sessions.
func CoursePath(courseID uint) string {
	return fmt.Sprintf("/student/course/%d/live", courseID)
}

// Delete removes one of the caller's own sessions of the course.
func (s *Service) Delete(ctx context.Context, caller auth.Identity, courseID, sessionID uint) error {
	if caller.Role != models.RoleInstructor {
		return apperror.Forbidden("only instructors can manage live sessions")
	}
	return s.store.DeleteLiveSession(ctx, sessionID, courseID, caller.UserID)
}

// Register returns the join link of a session. Only students register.
func (s *Service) Register(ctx context.Context, caller auth.Identity, sessionID uint) (string, error) {
	ls, err := s.store.GetLiveSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if caller.Role != models.RoleStudent {
		return "", apperror.Forbidden("only students can register")
	}
	if ls.JoinURL == "" {
		return "", apperror.Invalid("no join link available for this session")
	}
	return ls.JoinURL, nil
}

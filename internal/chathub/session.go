package chathub

import (
	"context"
	"fmt"
	"sync"

	"learnhub/backend/internal/apperror"
	"learnhub/backend/internal/auth"
	"learnhub/backend/internal/models"
)

// State is a connection's position in its lifecycle:
// CONNECTING -> AUTHENTICATING -> AUTHORIZED | REJECTED, then AUTHORIZED -> OPEN -> CLOSED.
type State int

const (
	StateConnecting State = iota
	StateAuthenticating
	StateAuthorized
	StateRejected
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthorized:
		return "authorized"
	case StateRejected:
		return "rejected"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Session carries one connection attempt through the lifecycle.
type Session struct {
	RoomID uint

	mu       sync.Mutex
	state    State
	identity auth.Identity
	room     *models.ChatRoom
}

func NewSession(roomID uint) *Session {
	return &Session{RoomID: roomID, state: StateConnecting}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity is only meaningful once the session has been authorized.
func (s *Session) Identity() auth.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

func (s *Session) Room() *models.ChatRoom {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

func (s *Session) transition(from []State, to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range from {
		if s.state == f {
			s.state = to
			return nil
		}
	}
	return fmt.Errorf("chathub: invalid transition %s -> %s", s.state, to)
}

// markClosed moves any state to CLOSED and reports whether it changed.
func (s *Session) markClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return false
	}
	s.state = StateClosed
	return true
}

// Authorize checks the resolved identity against the room's two participants. On
// failure the session is REJECTED and the returned error is an authorization or
// not-found error; nothing may be sent on a rejected connection.
func (m *ManagerService) Authorize(ctx context.Context, s *Session, res auth.Result) error {
	if err := s.transition([]State{StateConnecting}, StateAuthenticating); err != nil {
		return err
	}

	reject := func(err error) error {
		s.mu.Lock()
		s.state = StateRejected
		s.mu.Unlock()
		return err
	}

	id, ok := res.Identity()
	if !ok {
		return reject(apperror.Forbidden("authentication required"))
	}

	room, err := m.store.GetRoom(ctx, s.RoomID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			m.log.Info("chathub: user %d asked for missing chatroom %d", id.UserID, s.RoomID)
			return reject(apperror.Forbidden("access denied"))
		}
		m.log.Error("chathub: load chatroom %d: %v", s.RoomID, err)
		return reject(err)
	}
	if !room.IsParticipant(id.UserID) {
		m.log.Info("chathub: access denied for user %d to chatroom %d", id.UserID, s.RoomID)
		return reject(apperror.Forbidden("access denied"))
	}

	s.mu.Lock()
	s.identity = id
	s.room = room
	s.state = StateAuthorized
	s.mu.Unlock()
	return nil
}

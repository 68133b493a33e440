package chathub

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"learnhub/backend/internal/logging"
	"learnhub/backend/internal/models"
)

// Store is the persistence the hub needs.
type Store interface {
	GetRoom(ctx context.Context, id uint) (*models.ChatRoom, error)
	ListMessages(ctx context.Context, roomID uint) ([]models.Message, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
}

// Broadcaster fans an event out to every connection of a room, possibly across
// server instances.
type Broadcaster interface {
	Publish(ctx context.Context, roomID uint, ev models.ChatEvent) error
}

// group is one room's broadcast group.
type group struct {
	mu      sync.Mutex
	clients map[string]Client
}

// ManagerService owns the room -> connections mapping. The top-level lock only guards
// the map of groups; each group has its own lock so rooms never contend.
type ManagerService struct {
	mu     sync.Mutex
	groups map[uint]*group

	store       Store
	broadcaster Broadcaster
	log         logging.Logger
}

var _ Broadcaster = (*ManagerService)(nil)

// NewManagerService creates a hub that broadcasts in-process until SetBroadcaster is called.
func NewManagerService(s Store, log logging.Logger) *ManagerService {
	m := &ManagerService{
		groups: make(map[uint]*group),
		store:  s,
		log:    log,
	}
	m.broadcaster = m
	return m
}

// SetBroadcaster routes published events through b, e.g. the Redis relay.
func (m *ManagerService) SetBroadcaster(b Broadcaster) {
	m.broadcaster = b
}

// Publisher returns the broadcaster new messages should go through.
func (m *ManagerService) Publisher() Broadcaster {
	return m.broadcaster
}

// Publish delivers ev to this instance's connections of roomID.
func (m *ManagerService) Publish(_ context.Context, roomID uint, ev models.ChatEvent) error {
	m.Broadcast(roomID, ev)
	return nil
}

// Join registers c under its room's group.
func (m *ManagerService) Join(c Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[c.GetRoomID()]
	if !ok {
		g = &group{clients: make(map[string]Client)}
		m.groups[c.GetRoomID()] = g
	}
	g.mu.Lock()
	g.clients[c.GetID()] = c
	g.mu.Unlock()
}

// Leave removes c from its group. It is idempotent and safe for clients that never joined.
func (m *ManagerService) Leave(c Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[c.GetRoomID()]
	if !ok {
		return
	}
	g.mu.Lock()
	delete(g.clients, c.GetID())
	empty := len(g.clients) == 0
	g.mu.Unlock()
	if empty {
		delete(m.groups, c.GetRoomID())
	}
}

// Broadcast delivers ev to every member of roomID's group. Members are enumerated under
// the group lock, so a concurrent join either gets the event or does not, and every
// member sees events in the same order. Clients that cannot keep up are dropped.
func (m *ManagerService) Broadcast(roomID uint, ev models.ChatEvent) {
	m.mu.Lock()
	g, ok := m.groups[roomID]
	m.mu.Unlock()
	if !ok {
		return
	}

	var slow []Client
	g.mu.Lock()
	for _, c := range g.clients {
		if !c.Deliver(ev) {
			slow = append(slow, c)
		}
	}
	g.mu.Unlock()

	for _, c := range slow {
		m.log.Warn("chathub: dropping slow client %s of user %d in chatroom %d", c.GetID(), c.GetUserID(), roomID)
		m.Leave(c)
		c.Close()
	}
}

// CloseAll disconnects every client on this instance and returns how many there were.
// Hijacked websocket connections are invisible to http.Server.Shutdown, so the server
// calls this when it stops.
func (m *ManagerService) CloseAll() int {
	var clients []Client
	m.mu.Lock()
	for _, g := range m.groups {
		g.mu.Lock()
		for _, c := range g.clients {
			clients = append(clients, c)
		}
		g.mu.Unlock()
	}
	m.mu.Unlock()

	for _, c := range clients {
		m.Leave(c)
		c.Close()
	}
	return len(clients)
}

// ClientCount returns how many connections are attached to roomID on this instance.
func (m *ManagerService) ClientCount(roomID uint) int {
	m.mu.Lock()
	g, ok := m.groups[roomID]
	m.mu.Unlock()
	if !ok {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.clients)
}

// historyBuffer is implemented by clients that can hold broadcasts while the backlog
// is loaded.
type historyBuffer interface {
	Client
	startBuffering()
	flushWithHistory(history models.ChatEvent) bool
}

// Open moves an authorized session to OPEN: the client joins the group, then receives
// the backlog as a single chat_history frame. Broadcasts that race with the backlog
// load are held back and replayed afterwards unless the backlog already contains them.
func (m *ManagerService) Open(ctx context.Context, s *Session, c Client) error {
	if err := s.transition([]State{StateAuthorized}, StateOpen); err != nil {
		return err
	}

	hb, buffered := c.(historyBuffer)
	if buffered {
		hb.startBuffering()
	}
	m.Join(c)

	msgs, err := m.store.ListMessages(ctx, s.RoomID)
	if err != nil {
		m.Close(s, c)
		return fmt.Errorf("chathub: load history for chatroom %d: %w", s.RoomID, err)
	}
	history := models.NewHistoryEvent(s.RoomID, msgs)

	delivered := false
	if buffered {
		delivered = hb.flushWithHistory(history)
	} else {
		delivered = c.Deliver(history)
	}
	if !delivered {
		m.Close(s, c)
		return fmt.Errorf("chathub: client %s could not take history", c.GetID())
	}

	m.log.Info("chathub: %s connected to chatroom %d of course %d", s.Identity().Username, s.RoomID, s.Room().CourseID)
	return nil
}

// Close deregisters c and moves the session to CLOSED. Repeated calls are no-ops.
func (m *ManagerService) Close(s *Session, c Client) {
	m.Leave(c)
	if s.markClosed() {
		m.log.Info("chathub: %s disconnected from chatroom %d", s.Identity().Username, s.RoomID)
	}
	c.Close()
}

// HandleInbound processes a client's message: trimmed empty text, or a session that is
// not OPEN, is ignored. The message is stored before it is published; a storage
// failure means nothing is published.
func (m *ManagerService) HandleInbound(ctx context.Context, s *Session, frame models.InboundFrame) error {
	text := strings.TrimSpace(frame.Message)
	if text == "" || s.State() != StateOpen {
		return nil
	}
	id := s.Identity()
	if id.UserID == 0 {
		return nil
	}

	msg := &models.Message{ChatRoomID: s.RoomID, SenderID: id.UserID, Content: text}
	if err := m.store.CreateMessage(ctx, msg); err != nil {
		m.log.Error("chathub: failed to save message for chatroom %d: %v", s.RoomID, err)
		return err
	}

	if err := m.broadcaster.Publish(ctx, s.RoomID, models.NewMessageEvent(msg, id.Username)); err != nil {
		m.log.Error("chathub: failed to publish message %d for chatroom %d: %v", msg.ID, s.RoomID, err)
		return err
	}
	return nil
}

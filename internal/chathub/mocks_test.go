package chathub_test

import (
	"context"
	"sync"

	"learnhub/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of chathub.Store.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetRoom(ctx context.Context, id uint) (*models.ChatRoom, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRoom), args.Error(1)
}

func (m *MockStorage) ListMessages(ctx context.Context, roomID uint) ([]models.Message, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) CreateMessage(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockClient is a test double for the chathub.Client interface.
type MockClient struct {
	id     string
	userID uint
	roomID uint
	send   chan models.ChatEvent

	mu     sync.Mutex
	closed int
}

func newMockClient(id string, userID, roomID uint, buffer int) *MockClient {
	return &MockClient{
		id:     id,
		userID: userID,
		roomID: roomID,
		send:   make(chan models.ChatEvent, buffer),
	}
}

func (c *MockClient) GetID() string   { return c.id }
func (c *MockClient) GetUserID() uint { return c.userID }
func (c *MockClient) GetRoomID() uint { return c.roomID }

func (c *MockClient) Deliver(ev models.ChatEvent) bool {
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

func (c *MockClient) Close() {
	c.mu.Lock()
	c.closed++
	c.mu.Unlock()
}

func (c *MockClient) CloseCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// DrainMessages returns everything queued for the client so far.
func (c *MockClient) DrainMessages() []models.ChatEvent {
	var events []models.ChatEvent
	for {
		select {
		case ev := <-c.send:
			events = append(events, ev)
		default:
			return events
		}
	}
}

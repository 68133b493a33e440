package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"learnhub/backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *env) openRoom(t *testing.T) uint {
	var created struct {
		ChatRoomID uint `json:"chatroom_id"`
	}
	require.Equal(t, http.StatusCreated, e.do(t, e.student, http.MethodPost, "/api/courses/"+itoa(e.course.ID)+"/chat", nil, &created))
	return created.ChatRoomID
}

func dial(t *testing.T, srv *httptest.Server, roomID uint, token string) (*websocket.Conn, *http.Response, error) {
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat/" + itoa(roomID)
	if token != "" {
		u += "?token=" + token
	}
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if conn != nil {
		t.Cleanup(func() { conn.Close() })
	}
	return conn, resp, err
}

func readEvent(t *testing.T, conn *websocket.Conn) models.ChatEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev models.ChatEvent
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestWebSocketRejectsBeforeUpgrade(t *testing.T) {
	e := newEnv(t)
	roomID := e.openRoom(t)
	srv := httptest.NewServer(e.router)
	t.Cleanup(srv.Close)

	cases := []struct {
		name   string
		roomID uint
		token  string
	}{
		{"anonymous", roomID, ""},
		{"outsider", roomID, e.token(t, e.outsider)},
		{"missing room", 9999, e.token(t, e.student)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, resp, err := dial(t, srv, tc.roomID, tc.token)
			require.ErrorIs(t, err, websocket.ErrBadHandshake)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}

func TestWebSocketChat(t *testing.T) {
	e := newEnv(t)
	roomID := e.openRoom(t)
	require.Equal(t, http.StatusCreated, e.do(t, e.student, http.MethodPost, "/api/chat/"+itoa(roomID)+"/send", map[string]string{"message": "earlier"}, nil))

	srv := httptest.NewServer(e.router)
	t.Cleanup(srv.Close)

	instructor, _, err := dial(t, srv, roomID, e.token(t, e.instructor))
	require.NoError(t, err)
	history := readEvent(t, instructor)
	assert.Equal(t, models.EventChatHistory, history.Type)
	require.Len(t, history.History, 1)
	assert.Equal(t, "earlier", history.History[0].Content)
	assert.Equal(t, "ann", history.History[0].Sender)

	student, _, err := dial(t, srv, roomID, e.token(t, e.student))
	require.NoError(t, err)
	assert.Equal(t, models.EventChatHistory, readEvent(t, student).Type)

	require.NoError(t, student.WriteJSON(models.InboundFrame{Message: "  hi there  "}))

	for _, conn := range []*websocket.Conn{instructor, student} {
		ev := readEvent(t, conn)
		assert.Equal(t, models.EventChatMessage, ev.Type)
		assert.Equal(t, "hi there", ev.Message)
		assert.Equal(t, "ann", ev.Sender)
		assert.NotZero(t, ev.MessageID)
	}

	// REST sends reach open sockets too
	require.Equal(t, http.StatusCreated, e.do(t, e.instructor, http.MethodPost, "/api/chat/"+itoa(roomID)+"/send", map[string]string{"message": "welcome"}, nil))
	ev := readEvent(t, student)
	assert.Equal(t, "welcome", ev.Message)
	assert.Equal(t, "irene", ev.Sender)
}

func TestWebSocketClosedOnHubShutdown(t *testing.T) {
	e := newEnv(t)
	roomID := e.openRoom(t)
	srv := httptest.NewServer(e.router)
	t.Cleanup(srv.Close)

	conn, _, err := dial(t, srv, roomID, e.token(t, e.student))
	require.NoError(t, err)
	assert.Equal(t, models.EventChatHistory, readEvent(t, conn).Type)

	assert.Equal(t, 1, e.hub.CloseAll())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure), "got %v", err)
}

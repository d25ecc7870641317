package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-placement-backend/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type allowRooms map[int64]bool

func (a allowRooms) EnsureParticipant(_ context.Context, chatID int64, _ string) error {
	if !a[chatID] {
		return domain.ErrNotFound
	}
	return nil
}

func dialHub(t *testing.T, hub *Hub, rooms RoomAuthorizer, userID string) *websocket.Conn {
	t.Helper()
	upgrader := NewUpgrader(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewClient(conn, hub, rooms, userID).Serve(context.Background())
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestClient_EndToEnd(t *testing.T) {
	hub := NewHub(nil)
	conn := dialHub(t, hub, allowRooms{5: true}, "u1")

	require.Eventually(t, func() bool { return hub.HasUser("u1") }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": FramePing}))
	assert.Equal(t, domain.EventPong, readEvent(t, conn)["type"])

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": FrameJoinChat, "chat_id": 6}))
	ev := readEvent(t, conn)
	assert.Equal(t, domain.EventError, ev["type"])
	assert.Equal(t, "chat not found", ev["data"])

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": FrameJoinChat, "chat_id": 5}))
	require.Eventually(t, func() bool { return hub.HasRoom(5) }, 2*time.Second, 10*time.Millisecond)

	assert.True(t, hub.BroadcastToChat(context.Background(), 5, domain.Event{Type: domain.EventMessage, Data: "hi"}))
	ev = readEvent(t, conn)
	assert.Equal(t, domain.EventMessage, ev["type"])
	assert.Equal(t, "hi", ev["data"])

	assert.True(t, hub.PushToUser(context.Background(), "u1", domain.Event{Type: domain.EventNotification}))
	assert.Equal(t, domain.EventNotification, readEvent(t, conn)["type"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	assert.Equal(t, domain.EventError, readEvent(t, conn)["type"])

	conn.Close()
	require.Eventually(t, func() bool { return !hub.HasUser("u1") && !hub.HasRoom(5) }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.ActiveSessions())
}

func TestClient_ServerCloseSendsGoingAway(t *testing.T) {
	hub := NewHub(nil)
	conn := dialHub(t, hub, allowRooms{}, "u2")
	require.Eventually(t, func() bool { return hub.HasUser("u2") }, 2*time.Second, 10*time.Millisecond)

	hub.CloseAll()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	require.Eventually(t, func() bool { return !hub.HasUser("u2") }, 2*time.Second, 10*time.Millisecond)
}

func TestNewUpgrader_CheckOrigin(t *testing.T) {
	up := NewUpgrader([]string{"https://app.example.com/"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "https://app.example.com")
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, up.CheckOrigin(req))
}

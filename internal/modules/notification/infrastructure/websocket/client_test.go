package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStreamServer(t *testing.T, hub *Hub, userID uuid.UUID) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r, userID)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, body, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(body, &event))
	return event
}

func TestServeWs_ConnectedAckThenDelivery(t *testing.T) {
	hub := NewHub(time.Hour, 0)
	userID := uuid.New()
	srv := newStreamServer(t, hub, userID)

	conn := dial(t, srv)
	defer conn.Close()

	assert.Equal(t, EventConnected, readEvent(t, conn).Type)

	require.Eventually(t, func() bool {
		return hub.ConnectionCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.PublishNotification(userID, map[string]string{"kind": "mention"})

	event := readEvent(t, conn)
	assert.Equal(t, EventNotification, event.Type)
	payload, ok := event.Notification.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "mention", payload["kind"])
}

func TestServeWs_HeartbeatOnIdleConnection(t *testing.T) {
	hub := NewHub(50*time.Millisecond, 0)
	srv := newStreamServer(t, hub, uuid.New())

	conn := dial(t, srv)
	defer conn.Close()

	assert.Equal(t, EventConnected, readEvent(t, conn).Type)
	assert.Equal(t, EventHeartbeat, readEvent(t, conn).Type)
	assert.Equal(t, EventHeartbeat, readEvent(t, conn).Type)
}

func TestServeWs_TwoTabsThenOneDisconnects(t *testing.T) {
	hub := NewHub(time.Hour, 0)
	userID := uuid.New()
	srv := newStreamServer(t, hub, userID)

	c1 := dial(t, srv)
	defer c1.Close()
	c2 := dial(t, srv)
	defer c2.Close()

	assert.Equal(t, EventConnected, readEvent(t, c1).Type)
	assert.Equal(t, EventConnected, readEvent(t, c2).Type)

	require.Eventually(t, func() bool {
		return hub.ConnectionCount() == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, hub.ConnectedUserCount())

	hub.PublishNotification(userID, map[string]string{"kind": "reply"})

	assert.Equal(t, EventNotification, readEvent(t, c1).Type)
	assert.Equal(t, EventNotification, readEvent(t, c2).Type)

	require.NoError(t, c1.Close())

	require.Eventually(t, func() bool {
		return hub.ConnectionCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.PublishNotification(userID, map[string]string{"kind": "follow"})

	event := readEvent(t, c2)
	assert.Equal(t, EventNotification, event.Type)
	payload, ok := event.Notification.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "follow", payload["kind"])
}

func TestServeWs_DisconnectDetectedByHeartbeat(t *testing.T) {
	hub := NewHub(30*time.Millisecond, 0)
	srv := newStreamServer(t, hub, uuid.New())

	conn := dial(t, srv)
	assert.Equal(t, EventConnected, readEvent(t, conn).Type)

	require.Eventually(t, func() bool {
		return hub.ConnectionCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	// The next heartbeat write (or the read pump) notices the dead transport
	// and tears the connection down.
	require.Eventually(t, func() bool {
		return hub.ConnectionCount() == 0 && hub.ConnectedUserCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServeWs_UpgradeFailure(t *testing.T) {
	hub := NewHub(0, 0)
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	w := httptest.NewRecorder()

	ServeWs(hub, w, req, uuid.New())

	// Upgrade fails for a plain HTTP request; nothing is ever registered.
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	hub := NewHub(0, 0)
	c := newClient(hub, nil, uuid.New())
	hub.Register(c)

	assert.NotPanics(t, func() {
		c.Close()
		c.Close()
	})
	assert.Equal(t, 0, hub.ConnectionCount())
}

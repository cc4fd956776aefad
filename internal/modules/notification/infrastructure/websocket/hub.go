package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ws_active_connections",
		Help: "Number of open websocket connections.",
	})
	connectedUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connected_users",
		Help: "Number of distinct users with at least one open connection.",
	})
	eventsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ws_events_delivered_total",
		Help: "Total events enqueued to websocket connections.",
	})
)

const (
	defaultHeartbeatInterval = 30 * time.Second
	defaultSendBufferSize    = 16
)

// Hub is the process-wide registry of live connections, keyed by user. A user
// may hold any number of simultaneous connections (tabs, devices).
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}

	heartbeatInterval time.Duration
	sendBufferSize    int
}

// NewHub constructs a hub. Zero values fall back to defaults.
func NewHub(heartbeatInterval time.Duration, sendBufferSize int) *Hub {
	if heartbeatInterval <= 0 {
		heartbeatInterval = defaultHeartbeatInterval
	}
	if sendBufferSize <= 0 {
		sendBufferSize = defaultSendBufferSize
	}
	return &Hub{
		clients:           make(map[uuid.UUID]map[*Client]struct{}),
		heartbeatInterval: heartbeatInterval,
		sendBufferSize:    sendBufferSize,
	}
}

// Register adds a connection under its user's entry.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*Client]struct{})
		connectedUsers.Inc()
	}
	h.clients[c.userID][c] = struct{}{}
	h.mu.Unlock()

	activeConnections.Inc()
	log.Printf("ws: connection %s registered (user %s)", c.id, c.userID)
}

// Unregister removes a connection. Removing a connection that is not present
// is a no-op, so teardown is safe to trigger from multiple paths. The last
// removal for a user drops the user's entry entirely.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	conns, ok := h.clients[c.userID]
	if ok {
		if _, ok = conns[c]; ok {
			delete(conns, c)
			if len(conns) == 0 {
				delete(h.clients, c.userID)
				connectedUsers.Dec()
			}
		}
	}
	h.mu.Unlock()

	if ok {
		activeConnections.Dec()
		log.Printf("ws: connection %s unregistered (user %s, open %s)", c.id, c.userID, time.Since(c.openedAt))
	}
}

// SendToUser enqueues a message to every live connection of the user. A
// connection whose buffer is full is treated as dead and scheduled for
// teardown off the send path; delivery to the remaining connections proceeds.
func (h *Hub) SendToUser(userID uuid.UUID, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[userID] {
		select {
		case c.send <- message:
			eventsDelivered.Inc()
		default:
			go c.Close()
		}
	}
}

// PublishNotification frames a notification payload and fans it out to the
// user's live connections. Having no live connection is not an error.
func (h *Hub) PublishNotification(userID uuid.UUID, notification any) {
	h.SendToUser(userID, marshalEvent(Event{Type: EventNotification, Notification: notification}))
}

// ConnectionCount reports the total number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}

// ConnectedUserCount reports the number of distinct users with at least one
// live connection.
func (h *Hub) ConnectedUserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

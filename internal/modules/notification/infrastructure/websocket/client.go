package websocket

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS layer in front of the
	// upgrade; the handshake itself accepts any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one live outbound channel to a single authenticated user. The
// writer goroutine owns the transport, so delivery and heartbeat frames never
// interleave.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	id     uuid.UUID
	userID uuid.UUID

	send     chan []byte
	done     chan struct{}
	openedAt time.Time

	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		id:       uuid.New(),
		userID:   userID,
		send:     make(chan []byte, hub.sendBufferSize),
		done:     make(chan struct{}),
		openedAt: time.Now(),
	}
}

// ServeWs upgrades the request and runs the connection until it closes. The
// caller must have authenticated the user already.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	client := newClient(hub, conn, userID)

	// Acknowledge before anything can be delivered, then register. The pumps
	// only start after registration, so teardown cannot race an unregistered
	// client.
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, marshalEvent(Event{Type: EventConnected})); err != nil {
		conn.Close()
		return
	}

	hub.Register(client)

	go client.writePump()
	client.readPump()
}

// Close tears the connection down exactly once: it stops the pumps,
// unregisters from the hub, and releases the transport. Safe to call from
// any teardown path concurrently.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.hub.Unregister(c)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// writePump drains the send channel and emits heartbeats on a fixed period.
// Any write failure means the transport is dead and triggers teardown.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.heartbeatInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	heartbeat := marshalEvent(Event{Type: EventHeartbeat})

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, heartbeat); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// readPump blocks until the peer disconnects. Inbound payloads are discarded;
// the stream is outbound-only.
func (c *Client) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

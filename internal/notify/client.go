package notify

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"biteback/internal/auth"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBufferSize = 256
)

// clientMessage is what listeners may send upward: room join/leave requests
// and pings. Everything else is ignored.
type clientMessage struct {
	Type string `json:"type"`
	Room string `json:"room,omitempty"`
}

// Client is one connected listener, optionally carrying a verified identity.
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	claims *auth.Claims
}

// NewClient wraps an upgraded connection. claims may be nil for anonymous
// listeners.
func NewClient(hub *Hub, conn *websocket.Conn, claims *auth.Claims) *Client {
	return &Client{
		id:     uuid.New().String(),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		claims: claims,
	}
}

func (c *Client) userLabel() string {
	if c.claims == nil {
		return "anon"
	}
	return c.claims.Email
}

// trySend queues data without blocking; a full buffer drops the event.
func (c *Client) trySend(data []byte) {
	select {
	case c.send <- data:
	default:
		log.Printf("notify: client %s send buffer full, dropping event", c.id)
	}
}

// ReadPump consumes listener messages until the connection drops.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("notify: client %s read error: %v", c.id, err)
			}
			break
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		c.handleMessage(msg)
	}
}

// handleMessage honors join requests only for the client's own seller room:
// a listener may never attach itself to another identity's channel.
func (c *Client) handleMessage(msg clientMessage) {
	switch msg.Type {
	case "join":
		if c.claims != nil && msg.Room == SellerRoom(c.claims.UserID) {
			c.hub.JoinRoom(c, msg.Room)
		}
	case "leave":
		if msg.Room != "" {
			c.hub.LeaveRoom(c, msg.Room)
		}
	case "ping":
		pong, _ := json.Marshal(map[string]string{"type": "pong"})
		c.trySend(pong)
	}
}

// WritePump drains the send buffer onto the connection and keeps it alive
// with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

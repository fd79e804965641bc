package hub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client is one user's live connection inside a project room.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	userID    string
	projectID string

	send chan []byte

	mu           sync.Mutex
	sequenceID   string
	lastActivity time.Time
	alive        bool

	closeOnce sync.Once
}

// NewClient wraps an upgraded connection. sequenceID may be empty until the
// first cursor move declares one.
func NewClient(hub *Hub, conn *websocket.Conn, userID, projectID, sequenceID string) *Client {
	return &Client{
		hub:          hub,
		conn:         conn,
		userID:       userID,
		projectID:    projectID,
		sequenceID:   sequenceID,
		send:         make(chan []byte, sendQueueSize),
		lastActivity: time.Now(),
		alive:        true,
	}
}

// UserID returns the connection's user identity.
func (c *Client) UserID() string { return c.userID }

// ProjectID returns the room the connection belongs to.
func (c *Client) ProjectID() string { return c.projectID }

// Run starts the read and write pumps.
func (c *Client) Run() {
	go c.writePump()
	go c.readPump()
}

// readPump reads frames off the socket and queues them for the hub. The
// goroutine owns all reads on the connection; it exits on any read error
// and hands the client back to the hub for cleanup.
func (c *Client) readPump() {
	defer func() {
		c.hub.queueUnregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.touch()
		c.setAlive(true)
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).WithFields(logrus.Fields{
					"user_id":    c.userID,
					"project_id": c.projectID,
				}).Warn("Unexpected websocket close")
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		select {
		case c.hub.inbound <- inboundFrame{client: c, raw: raw}:
		default:
			logrus.WithFields(logrus.Fields{
				"user_id":    c.userID,
				"project_id": c.projectID,
			}).Warn("Hub inbound queue full, dropping frame")
		}
	}
}

// writePump drains the send queue onto the socket. The goroutine owns all
// data writes on the connection.
func (c *Client) writePump() {
	defer c.conn.Close()

	for raw := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			return
		}
	}
	// send closed by the hub: say goodbye.
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// trySend queues an outbound frame without blocking the caller.
func (c *Client) trySend(raw []byte) {
	select {
	case c.send <- raw:
	default:
		logrus.WithFields(logrus.Fields{
			"user_id":    c.userID,
			"project_id": c.projectID,
		}).Warn("Client send queue full, dropping message")
	}
}

// Ping sends a control ping. WriteControl is safe to call concurrently
// with the write pump.
func (c *Client) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// CloseConn tears down the underlying socket, unblocking the read pump.
func (c *Client) CloseConn() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// closeSend closes the outbound queue exactly once.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// ActiveSequence reports the sequence the user is currently viewing.
func (c *Client) ActiveSequence() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sequenceID
}

// SetActiveSequence records the sequence the user is currently viewing.
func (c *Client) SetActiveSequence(sequenceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sequenceID = sequenceID
}

// LastActivity reports the time of the last inbound frame or pong.
func (c *Client) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivity
}

func (c *Client) touch() {
	c.mu.Lock()
	c.lastActivity = time.Now()
	c.mu.Unlock()
}

// Alive reports whether the connection responded since the last sweep.
func (c *Client) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alive
}

func (c *Client) setAlive(alive bool) {
	c.mu.Lock()
	c.alive = alive
	c.mu.Unlock()
}

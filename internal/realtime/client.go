package realtime

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBufferSize = 16
)

// ErrSendBufferFull is returned when a client's outbound buffer is full.
// Live delivery is fire-and-forget, so callers log and move on.
var ErrSendBufferFull = errors.New("live connection send buffer full")

// Client wraps one websocket connection registered for one user. Outbound
// messages go through a buffered channel so Send never blocks the caller.
type Client struct {
	userID   string
	conn     *websocket.Conn
	registry Registry
	send     chan []byte
	closed   sync.Once
	done     chan struct{}
}

func NewClient(userID string, conn *websocket.Conn, registry Registry) *Client {
	return &Client{
		userID:   userID,
		conn:     conn,
		registry: registry,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
	}
}

// Send queues data for delivery without blocking. Messages are dropped with
// an error when the buffer is full or the connection is closing.
func (c *Client) Send(data []byte) error {
	select {
	case <-c.done:
		return errors.New("live connection closed")
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Run registers the client and pumps the connection until it closes.
// Deregistration is deferred so the registry entry cannot leak.
func (c *Client) Run() {
	c.registry.Set(c.userID, c)
	defer c.close()

	go c.writePump()
	c.readPump()
}

func (c *Client) close() {
	c.closed.Do(func() {
		c.registry.Remove(c.userID, c)
		close(c.done)
		err := c.conn.Close()
		if err != nil {
			slog.Debug("websocket close", "error", err, "user_id", c.userID)
		}
	})
}

// readPump drains inbound frames. The live channel is server-to-client
// only; reads exist to detect disconnects and answer pings.
func (c *Client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read failed", "error", err, "user_id", c.userID)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer c.close()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.TextMessage, data)
			if err != nil {
				slog.Debug("websocket write failed", "error", err, "user_id", c.userID)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				return
			}
		}
	}
}

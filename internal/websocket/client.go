package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20 // 1 MB
)

type Client struct {
	ID     string
	UserID string
	Scope  string
	Conn   *websocket.Conn
	Send   chan []byte

	hub       *Hub
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	lastSeenMu sync.RWMutex
	lastSeen   time.Time
}

func NewClient(id, userID, scope string, conn *websocket.Conn, hub *Hub) *Client {
	ctx, cancel := context.WithCancel(hub.ctx)
	return &Client{
		ID:       id,
		UserID:   userID,
		Scope:    scope,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		hub:      hub,
		ctx:      ctx,
		cancel:   cancel,
		lastSeen: time.Now(),
	}
}

// Start launches the read/write pumps. Clients without a real socket (tests
// drive Send directly) skip the pumps but still participate in broadcasts.
func (c *Client) Start() {
	if c.Conn == nil {
		return
	}
	go c.writePump()
	go c.readPump()
}

func (c *Client) IsClientActive() bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
		return true
	}
}

func (c *Client) GetLastSeen() time.Time {
	c.lastSeenMu.RLock()
	defer c.lastSeenMu.RUnlock()
	return c.lastSeen
}

func (c *Client) touch() {
	c.lastSeenMu.Lock()
	c.lastSeen = time.Now()
	c.lastSeenMu.Unlock()
}

// Close tears the client down exactly once: cancels the pumps, closes the
// socket and unregisters from the hub.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		if c.Conn != nil {
			_ = c.Conn.Close()
		}
		c.hub.Unregister(c)
	})
}

// writePump: take data from c.Send and send to socket + ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			if _, err := w.Write(msg); err != nil {
				_ = w.Close()
				return
			}

			_ = w.Close()

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump: the browser sends nothing meaningful over the socket (all writes
// go through the REST api), so inbound frames are drained only for pong
// keep-alive and close detection.
func (c *Client) readPump() {
	defer c.Close()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.touch()
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
		c.touch()
	}
}

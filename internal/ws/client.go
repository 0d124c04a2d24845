package ws

import (
	"sync"
	"time"

	"connect4/internal/arena"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Client is one websocket peer. It satisfies arena.Conn.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	closeOnce  sync.Once
	notifyOnce sync.Once

	mu       sync.Mutex
	handlers arena.Handlers
}

var _ arena.Conn = (*Client)(nil)

func newClient(conn *websocket.Conn, sendBuffer int) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// Send queues msg without blocking. A full queue closes the client.
func (c *Client) Send(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		metricWSSendDroppedTotal.Add(1)
		log.Warn().Str("remote", c.conn.RemoteAddr().String()).Msg("websocket send queue full, closing")
		c.Close()
		return false
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *Client) Bind(h arena.Handlers) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = h
}

func (c *Client) boundHandlers() arena.Handlers {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handlers
}

func (c *Client) readLoop() {
	defer func() {
		c.Close()
		c.notifyOnce.Do(func() {
			if h := c.boundHandlers(); h.OnClose != nil {
				h.OnClose()
			}
		})
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("websocket read error")
			}
			return
		}
		if h := c.boundHandlers(); h.OnMessage != nil {
			h.OnMessage(msg)
		}
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

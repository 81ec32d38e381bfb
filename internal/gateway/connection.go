// Package gateway is the WebSocket transport in front of the room
// engine: it upgrades HTTP requests, pumps frames between sockets and
// rooms, and reports closures back so rooms can detach channels.
package gateway

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"bingoroom/internal/room"
)

// ConnectionConfig holds per-socket transport settings.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBuffer      int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns default WebSocket settings.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBuffer:      256,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

// Connection adapts one websocket to the room.Channel contract. The
// write pump is the only goroutine touching the socket for writes; the
// room talks to the connection only through the buffered send channel.
type Connection struct {
	id   string
	slug string
	conn *websocket.Conn
	room *room.Room
	cfg  ConnectionConfig

	send chan []byte
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

func newConnection(conn *websocket.Conn, r *room.Room, cfg ConnectionConfig) *Connection {
	return &Connection{
		id:   uuid.New().String(),
		slug: r.Slug(),
		conn: conn,
		room: r,
		cfg:  cfg,
		send: make(chan []byte, cfg.SendBuffer),
		done: make(chan struct{}),
	}
}

// Send queues a frame for delivery. Fire-and-forget: frames to closed
// or saturated connections are discarded.
func (c *Connection) Send(data []byte) {
	select {
	case <-c.done:
	case c.send <- data:
	default:
		log.Warn().
			Str("connection_id", c.id).
			Str("slug", c.slug).
			Msg("send buffer full, dropping frame")
	}
}

// Close marks the connection closed and tears down the socket. Safe to
// call more than once; only the first call has effect.
func (c *Connection) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	c.conn.Close()
}

// Open reports whether the connection still accepts frames.
func (c *Connection) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// writePump drains the send channel onto the socket and keeps the
// connection alive with pings.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().
					Err(err).
					Str("connection_id", c.id).
					Msg("write failed, closing connection")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump feeds inbound frames to the room. Any read error, explicit
// close or abrupt disconnect alike, detaches the channel, which
// triggers the room's disconnect notice.
func (c *Connection) readPump() {
	defer func() {
		c.room.Detach(c)
		c.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().
					Err(err).
					Str("connection_id", c.id).
					Msg("unexpected close")
			}
			return
		}

		c.room.HandleMessage(c, data)
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	}
}

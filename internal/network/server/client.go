package server

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/seth-ellison/express-blackjack/internal/protocol"
)

const (
	// write timeout
	writeWait = 10 * time.Second

	// read timeout (pong wait)
	pongWait = 60 * time.Second

	// ping interval, must be shorter than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maximum inbound frame size
	maxMessageSize = 4096
)

var errClientClosed = errors.New("client connection closed")

// Client is one connected socket. It is a transport shell only: game state
// lives in the registry's tables, keyed by the seat this connection binds.
type Client struct {
	id string

	server *Server
	conn   *websocket.Conn
	send   chan []byte

	mu     sync.Mutex
	closed bool
}

func newClient(s *Server, conn *websocket.Conn) *Client {
	return &Client{
		id:     uuid.New().String(),
		server: s,
		conn:   conn,
		send:   make(chan []byte, 256),
	}
}

// ID returns the connection's unique id.
func (c *Client) ID() string { return c.id }

// Send queues a JSON frame for delivery. It never blocks on the socket; a
// closed client or a full buffer reports failure so the caller can detach
// this socket without delaying the others.
func (c *Client) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		log.Printf("client %s send buffer full, closing", c.id)
		c.closeLocked()
		return errClientClosed
	}
}

// ReadPump reads frames off the socket and hands them to the message
// handler. Runs as its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.handleDisconnect()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("read error on %s: %v", c.id, err)
			}
			break
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			log.Printf("bad frame from %s: %v", c.id, err)
			continue
		}

		c.server.handler.Handle(c, msg)
	}
}

// WritePump drains the send queue onto the socket and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleDisconnect unbinds this socket from whatever seat it represented.
// The match itself is untouched; a reconnecting socket may rebind the seat.
func (c *Client) handleDisconnect() {
	c.server.registry.Unbind(c.id)
	c.server.unregisterClient(c)
}

// Close shuts the send queue down.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

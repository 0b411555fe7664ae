// Package server is the Server Harness: it wraps gorilla/websocket and
// drives the Application Dispatcher for every accepted connection.
package server

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// hub tracks live connections by session id so a reconnecting session id
// displaces its predecessor on register.
type hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

func newHub() *hub {
	return &hub{clients: make(map[string]*client)}
}

func (h *hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.clients[c.sessionID]; ok {
		existing.close()
	}
	h.clients[c.sessionID] = c
	slog.Info("client registered", "sessionId", c.sessionID)
}

func (h *hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.clients[c.sessionID]; ok && existing == c {
		delete(h.clients, c.sessionID)
		slog.Info("client unregistered", "sessionId", c.sessionID)
	}
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// client is the intermediary between one websocket.Conn and the hub; exactly
// one goroutine each runs its readPump and writePump.
type client struct {
	hub       *hub
	conn      *websocket.Conn
	sessionID string
	send      chan []byte

	closeMu sync.Mutex
	closed  bool
}

func newClient(h *hub, conn *websocket.Conn, sessionID string) *client {
	return &client{hub: h, conn: conn, sessionID: sessionID, send: make(chan []byte, 256)}
}

func (c *client) close() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	c.conn.Close()
}

func (c *client) isClosed() bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	return c.closed
}

// trySend is a non-blocking write to the outbound channel; a full channel
// means the client isn't draining fast enough and the frame is dropped
// rather than blocking the caller (which may be the registry's own lock).
func (c *client) trySend(msg []byte) {
	c.closeMu.Lock()
	if c.closed {
		c.closeMu.Unlock()
		return
	}
	c.closeMu.Unlock()

	select {
	case c.send <- msg:
	default:
		slog.Warn("dropping frame: send buffer full", "sessionId", c.sessionID)
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			slog.Error("write failed", "sessionId", c.sessionID, "err", err)
			return
		}
	}
}

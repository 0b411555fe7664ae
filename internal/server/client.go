package server

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/splkm97/lobbyserver/internal/conn"
	"github.com/splkm97/lobbyserver/internal/rpc"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// readPump is run in its own goroutine; it is the only reader of c.conn,
// which is what lets internal/conn.State skip its own mutex.
func (s *Server) readPump(c *client, state *conn.State) {
	defer func() {
		s.dispatcher.OnDisconnect(state, s.disconnectHook)
		s.hub.unregister(c)
		c.close()
	}()

	c.conn.SetReadLimit(int64(s.cfg.MaxFrameBytes))
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read error", "sessionId", c.sessionID, "err", err)
			}
			return
		}

		frame, parseErr := rpc.Parse(raw)
		if parseErr != nil {
			code, msg := rpc.CodeOf(parseErr)
			wire, _ := rpc.EncodeError(nil, code, msg)
			c.trySend(wire)
			continue
		}

		switch frame.Kind {
		case rpc.KindCall:
			slog.Debug("handling call", "sessionId", c.sessionID, "method", frame.Method)
			if wire := s.dispatcher.OnCall(state, frame); wire != nil {
				c.trySend(wire)
			}
		default:
			slog.Warn("dropping unexpected frame from client", "sessionId", c.sessionID, "kind", frame.Kind)
		}
	}
}

// writePingLoop sends periodic pings alongside the client's own writePump,
// kept as a separate goroutine so trySend stays a simple channel send.
func (s *Server) writePingLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for range ticker.C {
		if c.isClosed() {
			return
		}
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}

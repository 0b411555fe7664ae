package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/splkm97/lobbyserver/internal/conn"
	"github.com/splkm97/lobbyserver/internal/config"
	"github.com/splkm97/lobbyserver/internal/dispatcher"
	"github.com/splkm97/lobbyserver/internal/roomreg"
	"github.com/splkm97/lobbyserver/internal/userreg"
)

// Server is the Server Harness: it owns the hub, the dispatcher, and the
// registries the dispatcher's handlers close over.
type Server struct {
	cfg            *config.Config
	hub            *hub
	dispatcher     *dispatcher.Dispatcher
	users          *userreg.Registry
	rooms          *roomreg.Registry
	disconnectHook dispatcher.DisconnectHook
	upgrader       websocket.Upgrader
}

// New wires a fresh Server around cfg. The dispatcher's method table is
// built once here, before any connection is accepted.
func New(cfg *config.Config, users *userreg.Registry, rooms *roomreg.Registry) *Server {
	d := dispatcher.New()
	dispatcher.RegisterMethods(d, users, rooms)

	s := &Server{
		cfg:            cfg,
		hub:            newHub(),
		dispatcher:     d,
		users:          users,
		rooms:          rooms,
		disconnectHook: dispatcher.DisconnectHookFor(users, rooms),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: cfg.HandshakeTimeout,
		CheckOrigin: func(r *http.Request) bool {
			// The lobby protocol has no browser-facing origin to police:
			// every known client is the integration harness or a trusted
			// game client dialing a loopback/internal address. A real
			// deployment fronting untrusted browsers would need an origin
			// allowlist; left as a follow-up.
			return true
		},
	}
	return s
}

// ServeHTTP upgrades the request to a WebSocket connection and drives it
// until the client disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	sessionID := uuid.NewString()
	c := newClient(s.hub, wsConn, sessionID)
	s.hub.register(c)

	state := conn.New(sessionID)

	if wire, err := s.dispatcher.OnConnect(); err == nil {
		c.trySend(wire)
	}

	go c.writePump()
	go s.writePingLoop(c)
	s.readPump(c, state)
}

// ConnectionCount reports the number of live connections, used by the
// integration harness to assert cleanup happened.
func (s *Server) ConnectionCount() int {
	return s.hub.count()
}

// Run binds cfg.BindAddr and serves until ctx is cancelled, at which point it
// stops the accept loop via http.Server.Shutdown and returns its result.
// Upgraded WebSocket connections are hijacked, so Shutdown neither closes
// them nor waits for their handlers to finish the frame they are processing.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", s)
	httpSrv := &http.Server{
		Addr:         s.cfg.BindAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}

// Package dispatcher is the generic per-connection application dispatcher:
// it owns the method-name -> handler map, the typed-handler adapter, and the
// onConnect/onCall/onDisconnect lifecycle. Each handler declares its own
// typed request/response shape instead of hand-picking fields out of
// json.RawMessage.
package dispatcher

import (
	"encoding/json"
	"log/slog"

	"github.com/splkm97/lobbyserver/internal/conn"
	"github.com/splkm97/lobbyserver/internal/rpc"
)

// rawHandler is the uniform shape every registered method is reduced to.
type rawHandler func(c *conn.State, params json.RawMessage) (interface{}, error)

// Dispatcher owns the read-only-after-setup method table; the registries are
// reached only through the handler closures stored in it.
type Dispatcher struct {
	handlers map[string]rawHandler
}

// New returns an empty dispatcher. Register every method before serving any
// connection; the handler map is never locked because nothing mutates it
// afterwards.
func New() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]rawHandler)}
}

// Register adds a typed handler under name. Registering the same name twice
// panics at startup; this is a programmer error, not a runtime condition.
func Register[Req any, Resp any](d *Dispatcher, name string, fn func(*conn.State, Req) (Resp, error)) {
	if _, exists := d.handlers[name]; exists {
		panic("dispatcher: handler already registered: " + name)
	}
	d.handlers[name] = func(c *conn.State, params json.RawMessage) (interface{}, error) {
		var req Req
		if len(params) > 0 && string(params) != "null" {
			if err := json.Unmarshal(params, &req); err != nil {
				return nil, rpc.ErrInvalidParams
			}
		}
		return fn(c, req)
	}
}

// WelcomeNotification is the notification emitted to every newly connected
// client.
type WelcomeNotification struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OnConnect builds the wire bytes for the welcome notification.
func (d *Dispatcher) OnConnect() ([]byte, error) {
	return rpc.EncodeNotification("system", WelcomeNotification{
		Code:    "connected",
		Message: "Welcome to the game server",
	})
}

// OnCall routes one parsed Call frame. It returns wire bytes to send back, or
// nil if nothing should be sent (any notification, whether or not its method
// exists or its handler failed).
func (d *Dispatcher) OnCall(c *conn.State, frame rpc.Frame) []byte {
	handler, ok := d.handlers[frame.Method]
	if !ok {
		if frame.IsNotification() {
			slog.Warn("dropping notification for unknown method", "method", frame.Method)
			return nil
		}
		wire, _ := rpc.EncodeError(frame.ID, rpc.ErrMethodNotFound.Code(), rpc.ErrMethodNotFound.Error())
		return wire
	}

	result, err := handler(c, frame.Params)
	if frame.IsNotification() {
		if err != nil {
			slog.Error("notification handler failed", "method", frame.Method, "err", err)
		}
		return nil
	}

	if err != nil {
		code, msg := rpc.CodeOf(err)
		wire, _ := rpc.EncodeError(frame.ID, code, msg)
		return wire
	}
	wire, encErr := rpc.EncodeResult(frame.ID, result)
	if encErr != nil {
		slog.Error("failed to encode result", "method", frame.Method, "err", encErr)
		wire, _ = rpc.EncodeError(frame.ID, rpc.ErrInternal.Code(), rpc.ErrInternal.Error())
	}
	return wire
}

// DisconnectHook is invoked once per connection teardown. It's supplied by
// the server harness so the dispatcher package doesn't need to import the
// user/room registries directly; handlers already closed over them at
// registration time, and disconnect cleanup is just another handler-shaped
// callback.
type DisconnectHook func(c *conn.State)

// OnDisconnect runs hook idempotently, guarding on c.Disconnected.
func (d *Dispatcher) OnDisconnect(c *conn.State, hook DisconnectHook) {
	if c.Disconnected {
		return
	}
	c.Disconnected = true
	if hook != nil {
		hook(c)
	}
}

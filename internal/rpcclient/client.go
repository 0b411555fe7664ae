// Package rpcclient is the synchronous JSON-RPC test client used by the
// integration harness: Call blocks for a matching response, Notify fires and
// forgets, Drain reads the next unsolicited frame (the welcome notification,
// or anything server-pushed).
package rpcclient

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/splkm97/lobbyserver/internal/rpc"
)

// Client dials one WebSocket connection and multiplexes Call/Notify against
// a single reader goroutine.
type Client struct {
	conn *websocket.Conn

	nextID  int64
	mu      sync.Mutex
	pending map[string]chan rpc.Frame

	unsolicited chan rpc.Frame
	closed      chan struct{}
}

// Dial connects to url (e.g. "ws://127.0.0.1:PORT/ws").
func Dial(url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		conn:        conn,
		pending:     make(map[string]chan rpc.Frame),
		unsolicited: make(chan rpc.Frame, 32),
		closed:      make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.closed)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		frame, err := rpc.Parse(raw)
		if err != nil {
			continue
		}
		if frame.Kind == rpc.KindResponse || frame.Kind == rpc.KindError {
			key := string(frame.ID)
			c.mu.Lock()
			ch, ok := c.pending[key]
			if ok {
				delete(c.pending, key)
			}
			c.mu.Unlock()
			if ok {
				ch <- frame
				continue
			}
		}
		select {
		case c.unsolicited <- frame:
		default:
		}
	}
}

// Call sends a request and blocks (up to timeout) for its matching response.
func (c *Client) Call(method string, params interface{}, timeout time.Duration) (rpc.Frame, error) {
	id := atomic.AddInt64(&c.nextID, 1)
	idStr := fmt.Sprint(id)
	wire, err := rpc.EncodeRequest(idStr, method, params)
	if err != nil {
		return rpc.Frame{}, err
	}

	ch := make(chan rpc.Frame, 1)
	idRaw, _ := json.Marshal(idStr)
	c.mu.Lock()
	c.pending[string(idRaw)] = ch
	c.mu.Unlock()

	if err := c.conn.WriteMessage(websocket.TextMessage, wire); err != nil {
		return rpc.Frame{}, err
	}

	select {
	case frame := <-ch:
		return frame, nil
	case <-time.After(timeout):
		return rpc.Frame{}, fmt.Errorf("rpcclient: timed out waiting for %s response", method)
	}
}

// Notify sends a fire-and-forget notification.
func (c *Client) Notify(method string, params interface{}) error {
	wire, err := rpc.EncodeNotification(method, params)
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, wire)
}

// Drain blocks (up to timeout) for the next unsolicited frame.
func (c *Client) Drain(timeout time.Duration) (rpc.Frame, error) {
	select {
	case frame := <-c.unsolicited:
		return frame, nil
	case <-time.After(timeout):
		return rpc.Frame{}, fmt.Errorf("rpcclient: timed out waiting for unsolicited frame")
	}
}

// SendRaw writes a raw payload directly, bypassing the encoder, used to
// exercise malformed-frame handling from the integration harness.
func (c *Client) SendRaw(raw []byte) error {
	return c.conn.WriteMessage(websocket.TextMessage, raw)
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

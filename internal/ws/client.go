package ws

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10 // must be < pongWait
)

// ErrConnClosed is returned by writes on a connection whose transport
// has gone away. Callers treat it as a routing miss, not a failure.
var ErrConnClosed = errors.New("ws: connection closed")

// Conn wraps a websocket connection so that the pinger and any number of
// forwarding goroutines never interleave frames.
type Conn struct {
	raw    *websocket.Conn
	mu     sync.Mutex
	closed atomic.Bool
}

func NewConn(raw *websocket.Conn) *Conn { return &Conn{raw: raw} }

// Send marshals v as a JSON text frame.
func (c *Conn) Send(v any) error {
	if c.closed.Load() {
		return ErrConnClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.raw.SetWriteDeadline(time.Now().Add(writeWait))
	return c.raw.WriteJSON(v)
}

// SendText writes data verbatim as a text frame.
func (c *Conn) SendText(data []byte) error {
	if c.closed.Load() {
		return ErrConnClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.raw.SetWriteDeadline(time.Now().Add(writeWait))
	return c.raw.WriteMessage(websocket.TextMessage, data)
}

func (c *Conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.raw.SetWriteDeadline(time.Now().Add(writeWait))
	return c.raw.WriteMessage(websocket.PingMessage, nil)
}

// ReadMessage blocks for the next text/binary frame from the peer.
// The reader goroutine is the only caller; the pong handler installed by
// Upgrade refreshes the read deadline.
func (c *Conn) ReadMessage() ([]byte, error) {
	_, data, err := c.raw.ReadMessage()
	return data, err
}

// Close marks the connection dead and tears the transport down.
// Safe to call more than once.
func (c *Conn) Close() error {
	c.closed.Store(true)
	return c.raw.Close()
}

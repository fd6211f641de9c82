package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// 64 KB is enough for WebRTC SDP payloads.
const maxMessageSize = 64 * 1024

var upgrader = websocket.Upgrader{
	ReadBufferSize:  maxMessageSize,
	WriteBufferSize: maxMessageSize,

	// Origin checks belong to the deployment's reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Upgrade performs the websocket handshake and returns the wrapped
// connection with read limits and the pong handler installed.
func Upgrade(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	raw, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Warn("ws.upgrade", zap.Error(err))
		return nil, err
	}

	raw.SetReadLimit(maxMessageSize)
	_ = raw.SetReadDeadline(time.Now().Add(pongWait))
	raw.SetPongHandler(func(string) error {
		return raw.SetReadDeadline(time.Now().Add(pongWait))
	})
	return NewConn(raw), nil
}

// PingLoop keeps the connection alive until a ping write fails or stop
// is closed. Run it in its own goroutine per connection.
func (c *Conn) PingLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				_ = c.Close()
				return
			}
		}
	}
}

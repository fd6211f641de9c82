package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"rtcrelaygo/internal/ws"
)

const publishTimeout = 2 * time.Second

// Server accepts chat websockets. Inbound chat traffic is published to
// the shared channel verbatim; only registration frames touch the local
// routing tables. Delivery to sockets is the Fanout subscriber's job.
type Server struct {
	reg     *Registry
	rdc     *redis.Client
	channel string
}

func NewServer(reg *Registry, rdc *redis.Client, channel string) *Server {
	return &Server{reg: reg, rdc: rdc, channel: channel}
}

// Handle is the gin entry-point for the chat endpoint.
func (s *Server) Handle(ginCtx *gin.Context) {
	conn, err := ws.Upgrade(ginCtx.Writer, ginCtx.Request)
	if err != nil {
		return
	}

	stop := make(chan struct{})
	go conn.PingLoop(stop)
	go s.reader(conn, stop)
}

func (s *Server) reader(conn *ws.Conn, stop chan struct{}) {
	defer func() {
		close(stop)
		_ = conn.Close()
		s.reg.Prune(conn)
	}()

	for {
		data, err := conn.ReadMessage()
		if err != nil {
			return // client closed or errored
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			zap.L().Warn("chat.bad_frame", zap.Error(err))
			continue
		}

		switch msg.Type {
		case TypeConnection:
			if msg.Name == "" {
				continue
			}
			s.reg.Register(msg.Name, conn)
			zap.L().Debug("chat.registered", zap.String("name", msg.Name))

		case TypeGroupConnection:
			if msg.GroupName == "" {
				continue
			}
			s.reg.JoinGroup(msg.GroupName, conn)
			zap.L().Debug("chat.group_joined", zap.String("group", msg.GroupName))

		case TypeP2P, TypeGroup:
			// Publish the original frame bytes so the subscriber sees
			// exactly what the client sent.
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			err := s.rdc.Publish(ctx, s.channel, data).Err()
			cancel()
			if err != nil {
				zap.L().Error("chat.publish_failed", zap.Error(err))
			}

		default:
			zap.L().Warn("chat.unknown_type", zap.String("type", msg.Type))
		}
	}
}

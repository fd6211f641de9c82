package signaling

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rtcrelaygo/internal/ws"
)

// Server accepts signaling websockets and runs one reader per connection.
type Server struct {
	reg *Registry
}

func NewServer(reg *Registry) *Server { return &Server{reg: reg} }

// Handle is the gin entry-point for the signaling endpoint.
func (s *Server) Handle(ginCtx *gin.Context) {
	conn, err := ws.Upgrade(ginCtx.Writer, ginCtx.Request)
	if err != nil {
		return
	}

	stop := make(chan struct{})
	go conn.PingLoop(stop)
	go s.reader(conn, stop)
}

// reader owns the connection's (room, role) binding. The binding is
// captured at join time and reused on close so an evicted connection
// cannot clear the slot of its replacement.
func (s *Server) reader(conn *ws.Conn, stop chan struct{}) {
	var joinedRoom string
	var joinedRole Role

	defer func() {
		close(stop)
		_ = conn.Close()
		if joinedRoom != "" {
			s.reg.Disconnect(joinedRoom, joinedRole, conn)
		}
	}()

	for {
		data, err := conn.ReadMessage()
		if err != nil {
			return // client closed or errored
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			// Malformed frames never cost the client its connection.
			zap.L().Warn("signal.bad_frame", zap.Error(err))
			continue
		}

		switch msg.Type {
		case TypeJoin:
			if msg.Room == "" || !msg.Role.valid() {
				zap.L().Warn("signal.bad_join",
					zap.String("room", msg.Room), zap.String("role", string(msg.Role)))
				continue
			}
			joinedRoom, joinedRole = msg.Room, msg.Role
			s.reg.Join(msg.Room, msg.Role, conn)

		case TypeOffer:
			if msg.Room == "" {
				continue
			}
			s.reg.ForwardOffer(msg.Room, msg.SDP)

		case TypeAnswer:
			if msg.Room == "" {
				continue
			}
			s.reg.ForwardAnswer(msg.Room, msg.SDP)

		case TypeCandidate:
			if msg.Room == "" {
				continue
			}
			s.reg.ForwardCandidate(msg.Room, conn, msg.Candidate)

		case TypeLeave:
			if msg.Room == "" {
				continue
			}
			s.reg.Leave(msg.Room, conn)

		default:
			zap.L().Warn("signal.unknown_type", zap.String("type", msg.Type))
		}
	}
}

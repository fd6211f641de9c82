package http_server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abrar71/swaggerfilesv2" // swagger embed files

	"rtcrelaygo/internal/chat"
	"rtcrelaygo/internal/http/relayhandler"
	"rtcrelaygo/internal/signaling"
)

type httpServer struct {
	listenPort uint16
	srv        http.Server
	ln         net.Listener
	signalSrv  *signaling.Server
	chatSrv    *chat.Server
	handler    *relayhandler.Handler
	ctx        context.Context
}

func NewHttpServer(ctx context.Context, listenPort uint16,
	signalSrv *signaling.Server, chatSrv *chat.Server, handler *relayhandler.Handler) *httpServer {
	return &httpServer{
		listenPort: listenPort,
		signalSrv:  signalSrv,
		chatSrv:    chatSrv,
		handler:    handler,
		ctx:        ctx,
	}
}

func (h *httpServer) Start() error {
	var err error
	listenAddr := fmt.Sprintf(":%d", h.listenPort)
	h.ln, err = net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	routerEngine := gin.New()

	// Swagger UI and API specs
	routerEngine.StaticFS("/swagger-apis", http.FS(swaggerfilesv2.FS))
	routerEngine.Static("/api-specs", "api_specs")

	routerEngine.Use(ginzap.RecoveryWithZap(zap.L(), true))

	// websocket endpoints
	routerEngine.GET("/ws/signal", h.signalSrv.Handle)
	routerEngine.GET("/ws/chat", h.chatSrv.Handle)

	// ops + history API
	h.handler.Register(routerEngine)

	h.srv = http.Server{
		Handler: routerEngine,
	}

	return h.srv.Serve(h.ln)
}

// Dispose gracefully shuts the HTTP server down.
// It waits up to 10 s for in-flight requests to finish.
func (h *httpServer) Dispose() error {
	ctx, cancel := context.WithTimeout(h.ctx, 10*time.Second)
	defer cancel()

	if err := h.srv.Shutdown(ctx); err != nil {
		zap.L().Error("http_dispose", zap.Error(err))
		return err // e.g. active conns didn't finish in time
	}

	if ctx.Err() == context.DeadlineExceeded {
		zap.L().Error("http_dispose", zap.Error(errors.New("shutdown timed out")))
		log.Println("shutdown timeout (10 s)")
	}

	return nil
}

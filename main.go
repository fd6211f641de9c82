package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"rtcrelaygo/internal/chat"
	"rtcrelaygo/internal/chat/chatstore"
	"rtcrelaygo/internal/config"
	"rtcrelaygo/internal/database/db_client"
	"rtcrelaygo/internal/http/http_server"
	"rtcrelaygo/internal/http/relayhandler"
	"rtcrelaygo/internal/redis/redis_client"
	"rtcrelaygo/internal/signaling"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	var err error
	var cfg *config.Config
	var redisClient *redis.Client

	// 1. Load configuration
	cfg, err = config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Redis (chat broadcast channel)
	redisClient, err = redis_client.NewRedisClient(cfg.RedisHost, int(cfg.RedisPort))
	if err != nil {
		Log.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisClient.Close()
	Log.Debug("Redis client created successfully")

	// 4. Postgres db client (chat message persistence)
	pgDb, err := db_client.Open(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
	if err != nil {
		Log.Fatal("pg-open", zap.Error(err))
	}
	defer pgDb.Close()

	// 5. Signaling relay: owned room registry + WS server
	roomRegistry := signaling.NewRegistry(cfg.RoomTTL)
	signalSrv := signaling.NewServer(roomRegistry)

	// 6. Chat relay: routing tables, batcher, Postgres sink
	chatRegistry := chat.NewRegistry()
	batcher := chat.NewBatcher(cfg.ChatBatchSize)
	store := chatstore.New(pgDb)
	chatSrv := chat.NewServer(chatRegistry, redisClient, cfg.ChatChannel)

	// 7. Background: single chat subscriber (fan-out + batch flushing)
	fanout := chat.NewFanout(redisClient, chatRegistry, batcher, store,
		cfg.ChatChannel, cfg.ChatFlushInterval)
	go fanout.Run(ctx)

	// 8. HTTP + WS server
	handler := relayhandler.New(roomRegistry, chatRegistry, store)
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, signalSrv, chatSrv, handler)
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "chat:events", cfg.ChatChannel)
	assert.Equal(t, 10, cfg.ChatBatchSize)
	assert.Equal(t, 10*time.Second, cfg.ChatFlushInterval)
	assert.Equal(t, 2*time.Minute, cfg.RoomTTL)
	assert.Equal(t, uint16(8085), cfg.HttpServerPort)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CHAT_BATCH_SIZE", "25")
	t.Setenv("CHAT_FLUSH_INTERVAL", "3s")
	t.Setenv("ROOM_TTL", "90s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.ChatBatchSize)
	assert.Equal(t, 3*time.Second, cfg.ChatFlushInterval)
	assert.Equal(t, 90*time.Second, cfg.RoomTTL)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("CHAT_BATCH_SIZE", "0")

	_, err := LoadConfig()
	assert.Error(t, err)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	req := require.New(t)

	cfg, err := Load()
	req.NoError(err)

	req.Equal(3000, cfg.Server.Port)
	req.Equal(30*time.Second, cfg.WebSocket.PingInterval)
	req.Equal(60*time.Second, cfg.WebSocket.PongWait)
	req.Equal(int64(10<<20), cfg.Upload.MaxBytes)
	req.Equal(1200, cfg.Upload.MaxWidth)
	req.Equal(80, cfg.Upload.JPEGQuality)
	req.Equal(30, cfg.History.DefaultLimit)
	req.Equal(100, cfg.History.MaxLimit)
	req.Equal("info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	req := require.New(t)

	t.Setenv("PORT", "8080")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("UPLOAD_MAX_BYTES", "1048576")

	cfg, err := Load()
	req.NoError(err)

	req.Equal(8080, cfg.Server.Port)
	req.Equal("debug", cfg.Log.Level)
	req.Equal(int64(1<<20), cfg.Upload.MaxBytes)
}

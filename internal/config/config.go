package config

import (
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/arcadia-live/chat-service/pkg/config"
	pkglog "github.com/arcadia-live/chat-service/pkg/log"
)

type Config struct {
	Server    ServerConfig
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Data      DataConfig
	Upload    UploadConfig
	History   HistoryConfig
	Log       pkglog.Config
}

type ServerConfig struct {
	Host string
	Port int
}

type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	SendBuffer     int           `mapstructure:"send_buffer"`
}

type DataConfig struct {
	Dir       string `mapstructure:"dir"`
	GamesFile string `mapstructure:"games_file"`
	UploadDir string `mapstructure:"upload_dir"`
	PublicDir string `mapstructure:"public_dir"`
}

type UploadConfig struct {
	MaxBytes    int64  `mapstructure:"max_bytes"`
	MaxWidth    int    `mapstructure:"max_width"`
	MaxHeight   int    `mapstructure:"max_height"`
	JPEGQuality int    `mapstructure:"jpeg_quality"`
	URLPrefix   string `mapstructure:"url_prefix"`
}

type HistoryConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("websocket.send_buffer", 256)
	v.SetDefault("data.dir", "./data")
	v.SetDefault("data.games_file", "./data/games.json")
	v.SetDefault("data.upload_dir", "./uploads")
	v.SetDefault("data.public_dir", "./public")
	v.SetDefault("upload.max_bytes", 10<<20) // 10MB
	v.SetDefault("upload.max_width", 1200)
	v.SetDefault("upload.max_height", 1200)
	v.SetDefault("upload.jpeg_quality", 80)
	v.SetDefault("upload.url_prefix", "/uploads")
	v.SetDefault("history.default_limit", 30)
	v.SetDefault("history.max_limit", 100)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// Override from environment
	v.BindEnv("server.port", "PORT")
	v.BindEnv("data.dir", "DATA_DIR")
	v.BindEnv("data.upload_dir", "UPLOAD_DIR")
	v.BindEnv("upload.max_bytes", "UPLOAD_MAX_BYTES")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.WebSocket.PingInterval = parseDuration(v, "websocket.ping_interval", 30*time.Second)
	cfg.WebSocket.PongWait = parseDuration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = parseDuration(v, "websocket.write_wait", 10*time.Second)

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return defaultVal
	}
	return d
}

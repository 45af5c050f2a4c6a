package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arcadia-live/chat-service/internal/config"
	"github.com/arcadia-live/chat-service/internal/handler"
	"github.com/arcadia-live/chat-service/internal/hub"
	"github.com/arcadia-live/chat-service/internal/processor"
	"github.com/arcadia-live/chat-service/internal/registry"
	"github.com/arcadia-live/chat-service/internal/service"
	"github.com/arcadia-live/chat-service/internal/store"
	pkglog "github.com/arcadia-live/chat-service/pkg/log"
	"github.com/arcadia-live/chat-service/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	pkglog.Init(cfg.Log)
	logger := pkglog.L()
	logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting chat service")

	// Durable state: message log and game catalog.
	messages, err := store.OpenMessageLog(cfg.Data.Dir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open message log")
	}
	defer messages.Close()
	logger.Info().Int("messages", messages.Len()).Str("dir", cfg.Data.Dir).Msg("message log opened")

	games, err := store.LoadGameCatalog(cfg.Data.GamesFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load game catalog")
	}

	// Attachment storage and resize pipeline.
	uploads, err := storage.NewLocalStorage(cfg.Data.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize upload storage")
	}
	imgProcessor := processor.NewUploadImageProcessor(uploads, cfg.Upload)

	// Presence registry is in-memory only; everyone implicitly leaves on
	// restart.
	reg := registry.New()

	wsHub := hub.NewHub(cfg.WebSocket)
	go wsHub.Run()
	defer wsHub.Stop()

	chatSvc := service.NewChatService(wsHub, reg, messages)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(pkglog.GinMiddleware(logger), gin.Recovery())

	handler.NewWSHandler(wsHub, chatSvc, cfg.WebSocket).RegisterRoutes(router)
	handler.NewHTTPHandler(messages, games, imgProcessor, cfg.History, cfg.Upload).RegisterRoutes(router)

	router.Static("/uploads", uploads.BasePath())
	if _, err := os.Stat(cfg.Data.PublicDir); err == nil {
		router.Static("/public", cfg.Data.PublicDir)
		router.StaticFile("/", cfg.Data.PublicDir+"/index.html")
	}

	// No global read/write timeouts: /ws holds connections open for the
	// lifetime of a chat session.
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}

	logger.Info().Msg("chat service stopped")
}

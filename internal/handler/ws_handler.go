package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/arcadia-live/chat-service/internal/config"
	"github.com/arcadia-live/chat-service/internal/domain"
	"github.com/arcadia-live/chat-service/internal/hub"
	"github.com/arcadia-live/chat-service/internal/service"
	"github.com/arcadia-live/chat-service/pkg/log"
)

// WSHandler upgrades HTTP requests to WebSocket connections and dispatches
// client events to the chat service.
type WSHandler struct {
	hub      *hub.Hub
	service  service.ChatService
	wsCfg    config.WebSocketConfig
	upgrader websocket.Upgrader
}

func NewWSHandler(h *hub.Hub, svc service.ChatService, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:     h,
		service: svc,
		wsCfg:   wsCfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", h.HandleWebSocket)
}

func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Ctx(c.Request.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.wsCfg)
	h.hub.Register(client)

	go client.WritePump()
	go func() {
		client.ReadPump(h.handleEvent)
		// ReadPump has already queued the hub removal; release the name
		// and tell everyone else.
		if err := h.service.HandleDisconnect(context.Background(), client); err != nil {
			log.L().Error().Err(err).Str(log.FieldClientID, client.ID).Msg("disconnect handling failed")
		}
	}()
}

func (h *WSHandler) handleEvent(client *hub.Client, message []byte) {
	var base domain.BaseEvent
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid event format"))
		return
	}

	ctx := context.Background()

	switch base.Type {
	case domain.EventRegister:
		var ev domain.RegisterEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid register event"))
			return
		}
		if err := h.service.HandleRegister(ctx, client, ev.Username); err != nil {
			log.L().Error().Err(err).Str(log.FieldClientID, client.ID).Msg("register failed")
		}

	case domain.EventSendMessage:
		var ev domain.SendMessageEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid send-message event"))
			return
		}
		if err := h.service.HandleSendMessage(ctx, client, ev.Text, ev.ImageURL); err != nil {
			log.L().Error().Err(err).Str(log.FieldClientID, client.ID).Msg("send message failed")
		}

	case domain.EventTyping:
		if err := h.service.HandleTyping(ctx, client); err != nil {
			log.L().Error().Err(err).Str(log.FieldClientID, client.ID).Msg("typing relay failed")
		}

	case domain.EventStopTyping:
		if err := h.service.HandleStopTyping(ctx, client); err != nil {
			log.L().Error().Err(err).Str(log.FieldClientID, client.ID).Msg("stop-typing relay failed")
		}

	default:
		client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Unknown event type: "+base.Type))
	}
}

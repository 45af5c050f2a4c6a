package service

import (
	"context"

	"github.com/arcadia-live/chat-service/internal/hub"
)

// ChatService routes client events through the presence registry and the
// message log, and fans the results back out via the hub.
type ChatService interface {
	HandleRegister(ctx context.Context, c *hub.Client, username string) error
	HandleSendMessage(ctx context.Context, c *hub.Client, text, imageURL string) error
	HandleTyping(ctx context.Context, c *hub.Client) error
	HandleStopTyping(ctx context.Context, c *hub.Client) error
	HandleDisconnect(ctx context.Context, c *hub.Client) error
}

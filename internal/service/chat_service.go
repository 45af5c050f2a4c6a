package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/arcadia-live/chat-service/internal/domain"
	"github.com/arcadia-live/chat-service/internal/hub"
	"github.com/arcadia-live/chat-service/internal/registry"
	"github.com/arcadia-live/chat-service/internal/store"
	"github.com/arcadia-live/chat-service/pkg/log"
)

// registerPayload and messagePayload carry the validation rules for the two
// client events that accept input.
type registerPayload struct {
	Username string `validate:"required,min=1,max=32"`
}

type messagePayload struct {
	Text     string `validate:"required_without=ImageURL"`
	ImageURL string `validate:"omitempty,max=512"`
}

type chatService struct {
	hub      *hub.Hub
	registry *registry.Registry
	messages *store.MessageLog
	validate *validator.Validate

	// mu serializes the mutating handlers (register, send, disconnect) so
	// that log append order equals broadcast order and every presence
	// broadcast carries a snapshot consistent with its event.
	mu sync.Mutex
}

func NewChatService(h *hub.Hub, reg *registry.Registry, messages *store.MessageLog) ChatService {
	return &chatService{
		hub:      h,
		registry: reg,
		messages: messages,
		validate: validator.New(),
	}
}

func (s *chatService) HandleRegister(ctx context.Context, c *hub.Client, username string) error {
	username = strings.TrimSpace(username)

	if err := s.validate.Struct(registerPayload{Username: username}); err != nil {
		return c.SendEvent(&domain.RegisterFailedEvent{
			Type:   domain.EventRegisterFailed,
			Reason: "Username must be between 1 and 32 characters",
		})
	}
	if strings.ContainsFunc(username, unicode.IsControl) {
		return c.SendEvent(&domain.RegisterFailedEvent{
			Type:   domain.EventRegisterFailed,
			Reason: "Username contains disallowed characters",
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	outcome, oldName, err := s.registry.Register(c.ID, username)
	if errors.Is(err, registry.ErrNameTaken) {
		// Not fatal: the client keeps its connection and may retry.
		return c.SendEvent(&domain.RegisterFailedEvent{
			Type:   domain.EventRegisterFailed,
			Reason: "Username already taken",
		})
	}
	if err != nil {
		return fmt.Errorf("register %s: %w", c.ID, err)
	}

	if err := c.SendEvent(&domain.RegisterSuccessEvent{
		Type:     domain.EventRegisterSuccess,
		Username: username,
	}); err != nil {
		return err
	}

	snapshot := s.registry.Snapshot()
	now := time.Now().UTC()

	switch {
	case outcome == registry.Renamed && oldName == username:
		// Re-claiming the name you already hold succeeds without noise.
	case outcome == registry.Renamed:
		log.Ctx(ctx).Info().Str(log.FieldClientID, c.ID).Str("old", oldName).Str("new", username).Msg("user renamed")
		return s.hub.Broadcast(&domain.NameChangedEvent{
			Type:        domain.EventUserNameChanged,
			OldUsername: oldName,
			NewUsername: username,
			Timestamp:   now,
			ActiveUsers: snapshot,
		}, "")
	default:
		log.Ctx(ctx).Info().Str(log.FieldClientID, c.ID).Str(log.FieldUsername, username).Msg("user registered")
		return s.hub.Broadcast(&domain.PresenceEvent{
			Type:        domain.EventUserJoined,
			Username:    username,
			Timestamp:   now,
			ActiveUsers: snapshot,
		}, "")
	}
	return nil
}

func (s *chatService) HandleSendMessage(ctx context.Context, c *hub.Client, text, imageURL string) error {
	username, ok := s.registry.Name(c.ID)
	if !ok {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeUnauthorized, "Not registered"))
	}

	text = strings.TrimSpace(text)
	if err := s.validate.Struct(messagePayload{Text: text, ImageURL: imageURL}); err != nil {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeValidation, "Message needs text or an image"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := domain.ChatMessage{
		ID:        newMessageID(),
		Username:  username, // registered name, never client-supplied
		Text:      text,
		ImageURL:  imageURL,
		Timestamp: time.Now().UTC(),
	}

	// Persist first; a message that is not committed is never broadcast.
	if err := s.messages.Append(ctx, msg); err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldClientID, c.ID).Msg("failed to persist message")
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeInternalError, "Failed to send message"))
	}

	return s.hub.Broadcast(&domain.NewMessageEvent{
		Type:        domain.EventNewMessage,
		ChatMessage: msg,
	}, "")
}

func (s *chatService) HandleTyping(ctx context.Context, c *hub.Client) error {
	return s.relayTyping(c, domain.EventUserTyping)
}

func (s *chatService) HandleStopTyping(ctx context.Context, c *hub.Client) error {
	return s.relayTyping(c, domain.EventUserStopTyping)
}

// relayTyping broadcasts a typing signal to every connection except the
// originator. Typing state is never persisted and carries no ordering
// guarantee relative to messages.
func (s *chatService) relayTyping(c *hub.Client, eventType string) error {
	username, ok := s.registry.Name(c.ID)
	if !ok {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeUnauthorized, "Not registered"))
	}

	return s.hub.Broadcast(&domain.TypingEvent{
		Type:     eventType,
		Username: username,
	}, c.ID)
}

func (s *chatService) HandleDisconnect(ctx context.Context, c *hub.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username, ok := s.registry.Unregister(c.ID)
	if !ok {
		// Disconnect without ever registering: no leave broadcast.
		return nil
	}

	log.Ctx(ctx).Info().Str(log.FieldClientID, c.ID).Str(log.FieldUsername, username).Msg("user disconnected")

	return s.hub.Broadcast(&domain.PresenceEvent{
		Type:        domain.EventUserLeft,
		Username:    username,
		Timestamp:   time.Now().UTC(),
		ActiveUsers: s.registry.Snapshot(),
	}, "")
}

// newMessageID builds a display-orderable ID: millisecond timestamp plus a
// random suffix to break ties.
func newMessageID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

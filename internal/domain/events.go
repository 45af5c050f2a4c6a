package domain

import "time"

// WebSocket event types from client.
const (
	EventRegister    = "register"
	EventSendMessage = "send-message"
	EventTyping      = "typing"
	EventStopTyping  = "stop-typing"
)

// WebSocket event types to client.
const (
	EventRegisterSuccess = "register-success"
	EventRegisterFailed  = "register-failed"
	EventNewMessage      = "new-message"
	EventUserJoined      = "user-joined"
	EventUserLeft        = "user-left"
	EventUserNameChanged = "user-name-changed"
	EventUserTyping      = "user-typing"
	EventUserStopTyping  = "user-stop-typing"
	EventError           = "error"
)

// Error codes carried by error events.
const (
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// BaseEvent is the envelope shared by all WebSocket events; Type selects the
// concrete payload.
type BaseEvent struct {
	Type string `json:"type"`
}

// Client -> Server events

type RegisterEvent struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

type SendMessageEvent struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Server -> Client events

type RegisterSuccessEvent struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

type RegisterFailedEvent struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type NewMessageEvent struct {
	Type string `json:"type"`
	ChatMessage
}

// PresenceEvent is the shape of user-joined and user-left broadcasts. Every
// presence change carries the full activeUsers snapshot so observers never
// need to diff.
type PresenceEvent struct {
	Type        string    `json:"type"`
	Username    string    `json:"username"`
	Timestamp   time.Time `json:"timestamp"`
	ActiveUsers []string  `json:"activeUsers"`
}

type NameChangedEvent struct {
	Type        string    `json:"type"`
	OldUsername string    `json:"oldUsername"`
	NewUsername string    `json:"newUsername"`
	Timestamp   time.Time `json:"timestamp"`
	ActiveUsers []string  `json:"activeUsers"`
}

type TypingEvent struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorEvent(code, message string) *ErrorEvent {
	return &ErrorEvent{
		Type:    EventError,
		Code:    code,
		Message: message,
	}
}

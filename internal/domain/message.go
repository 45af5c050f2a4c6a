package domain

import "time"

// ChatMessage is one persisted chat log entry. Once appended it is immutable:
// Username is a snapshot of the sender's name at send time and is never
// rewritten on rename.
type ChatMessage struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageHistory is the payload of GET /api/messages.
type MessageHistory struct {
	Messages []ChatMessage `json:"messages"`
	Total    int           `json:"total"`
	HasMore  bool          `json:"hasMore"`
}

// UploadResult is the payload of POST /api/upload.
type UploadResult struct {
	ImageURL string `json:"imageUrl"`
}

// Game is one entry of the launcher catalog.
type Game struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Desc string `json:"desc"`
}

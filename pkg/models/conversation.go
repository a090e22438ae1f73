package models

import (
	"time"

	"github.com/google/uuid"
)

// Message role constants.
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Message is one entry in a conversation's ordered message list.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is an append-only chat transcript. Mutated only by appending a
// user+assistant message pair per turn.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// maxTitleLen bounds the derived conversation title.
const maxTitleLen = 60

// DeriveTitle produces a conversation title from its first user message.
// The cut falls on a rune boundary so multi-byte text is never split.
func DeriveTitle(firstUserMessage string) string {
	runes := []rune(firstUserMessage)
	if len(runes) <= maxTitleLen {
		return firstUserMessage
	}
	return string(runes[:maxTitleLen]) + "..."
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
	MessageRoleSystem    = "system"
)

type Conversation struct {
	Id        uuid.UUID
	UserId    *uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// ConversationMessage is one turn of a conversation. Messages are strictly
// ordered by CreatedAt; only the most recent N are replayed into new prompts.
type ConversationMessage struct {
	Id               uuid.UUID
	ConversationId   uuid.UUID
	Role             string
	Content          string
	Embedding        []float32
	PromptTokens     int
	CompletionTokens int
	// Metadata carries opaque pass-through data (sources, confidence). It is
	// never used in ranking logic.
	Metadata  map[string]interface{}
	CreatedAt time.Time
}

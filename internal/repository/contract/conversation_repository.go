package contract

import (
	"context"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/specification"

	"github.com/google/uuid"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error)
	Touch(ctx context.Context, id uuid.UUID) error

	CreateMessage(ctx context.Context, message *entity.ConversationMessage) error

	// RecentMessages returns the most recent n messages of a conversation in
	// chronological order.
	RecentMessages(ctx context.Context, conversationId uuid.UUID, n int) ([]*entity.ConversationMessage, error)
}

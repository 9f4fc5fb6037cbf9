package mapper

import (
	"encoding/json"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

func (m *ConversationMapper) ToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Conversation{
		Id:        c.Id,
		UserId:    c.UserId,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *ConversationMapper) ToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Conversation{
		Id:        c.Id,
		UserId:    c.UserId,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *ConversationMapper) MessageToEntity(msg *model.ConversationMessage) *entity.ConversationMessage {
	if msg == nil {
		return nil
	}

	var embedding []float32
	if msg.Embedding != nil {
		embedding = msg.Embedding.Slice()
	}

	var metadata map[string]interface{}
	if len(msg.Metadata) > 0 {
		_ = json.Unmarshal(msg.Metadata, &metadata)
	}

	return &entity.ConversationMessage{
		Id:               msg.Id,
		ConversationId:   msg.ConversationId,
		Role:             msg.Role,
		Content:          msg.Content,
		Embedding:        embedding,
		PromptTokens:     msg.PromptTokens,
		CompletionTokens: msg.CompletionTokens,
		Metadata:         metadata,
		CreatedAt:        msg.CreatedAt,
	}
}

func (m *ConversationMapper) MessageToModel(msg *entity.ConversationMessage) *model.ConversationMessage {
	if msg == nil {
		return nil
	}

	var embedding *pgvector.Vector
	if len(msg.Embedding) > 0 {
		v := pgvector.NewVector(msg.Embedding)
		embedding = &v
	}

	var metadata datatypes.JSON
	if len(msg.Metadata) > 0 {
		raw, _ := json.Marshal(msg.Metadata)
		metadata = datatypes.JSON(raw)
	}

	return &model.ConversationMessage{
		Id:               msg.Id,
		ConversationId:   msg.ConversationId,
		Role:             msg.Role,
		Content:          msg.Content,
		Embedding:        embedding,
		PromptTokens:     msg.PromptTokens,
		CompletionTokens: msg.CompletionTokens,
		Metadata:         metadata,
		CreatedAt:        msg.CreatedAt,
	}
}

func (m *ConversationMapper) MessagesToEntities(msgs []*model.ConversationMessage) []*entity.ConversationMessage {
	entities := make([]*entity.ConversationMessage, len(msgs))
	for i, msg := range msgs {
		entities[i] = m.MessageToEntity(msg)
	}
	return entities
}

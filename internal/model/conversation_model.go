package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Conversation struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    *uuid.UUID `gorm:"type:uuid;index"`
	Title     string     `gorm:"type:varchar(255)"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Conversation) TableName() string {
	return "conversations"
}

type ConversationMessage struct {
	Id               uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId   uuid.UUID        `gorm:"type:uuid;not null;index"`
	Role             string           `gorm:"type:message_role;not null"`
	Content          string           `gorm:"type:text"`
	Embedding        *pgvector.Vector `gorm:"type:vector(1536)"`
	PromptTokens     int              `gorm:"default:0"`
	CompletionTokens int              `gorm:"default:0"`
	Metadata         datatypes.JSON
	CreatedAt        time.Time `gorm:"autoCreateTime;index"`
}

func (ConversationMessage) TableName() string {
	return "conversation_messages"
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type CachedEmbedding struct {
	Id          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContentHash string          `gorm:"type:varchar(64);uniqueIndex;not null"`
	Model       string          `gorm:"type:varchar(100);not null"`
	Embedding   pgvector.Vector `gorm:"type:vector(1536)"`
	UsageCount  int64           `gorm:"default:1"`
	LastUsedAt  time.Time       `gorm:"index"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
}

func (CachedEmbedding) TableName() string {
	return "cached_embeddings"
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentChunk struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId      uuid.UUID `gorm:"type:uuid;not null;index"`
	Content         string    `gorm:"type:text"`
	ChunkIndex      int       `gorm:"default:0"` // 0-based order within the document
	Language        string    `gorm:"type:varchar(10);default:'en'"`
	Keywords        datatypes.JSON
	ImportanceScore float64 `gorm:"default:1.0"`
	// NULL until the ingestion consumer has generated the vector; such rows
	// are excluded from similarity search. text-embedding-3-small uses 1536
	// dimensions.
	Embedding *pgvector.Vector `gorm:"type:vector(1536)"`
	CreatedAt time.Time        `gorm:"autoCreateTime"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt   `gorm:"index"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}

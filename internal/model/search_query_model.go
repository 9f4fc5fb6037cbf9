package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// SearchQuery is append-only: rows are inserted once and never updated, so the
// model carries no UpdatedAt/DeletedAt.
type SearchQuery struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         *uuid.UUID `gorm:"type:uuid;index"`
	QueryText      string     `gorm:"type:text;not null"`
	QueryEmbedding *pgvector.Vector `gorm:"type:vector(1536)"`
	// Snapshot of the typed filter set, stored for offline analysis.
	Filters         datatypes.JSON
	ResultsCount    int       `gorm:"default:0"`
	ExecutionTimeMs int64     `gorm:"default:0"`
	Language        string    `gorm:"type:varchar(10);default:'en'"`
	Successful      bool      `gorm:"default:true;index"`
	ErrorMessage    string    `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index"`
}

func (SearchQuery) TableName() string {
	return "search_queries"
}

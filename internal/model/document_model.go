package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Document struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title        string     `gorm:"type:varchar(255);not null"`
	Category     string     `gorm:"type:varchar(100);index"`
	Language     string     `gorm:"type:varchar(10);default:'en'"`
	WarehouseId  *uuid.UUID `gorm:"type:uuid;index"`
	DepartmentId *uuid.UUID `gorm:"type:uuid;index"`
	Tags         datatypes.JSON
	// Mean of the chunk vectors; recomputed whenever chunks are re-embedded.
	Embedding *pgvector.Vector `gorm:"type:vector(1536)"`
	ViewCount int              `gorm:"default:0"`
	AvgRating float64          `gorm:"default:0"`
	CreatedAt time.Time        `gorm:"autoCreateTime"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt   `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}

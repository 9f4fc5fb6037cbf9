package model

import (
	"time"

	"github.com/google/uuid"
)

type SearchSuggestion struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NormalizedQuery string    `gorm:"type:varchar(500);uniqueIndex;not null"`
	DisplayText     string    `gorm:"type:varchar(500);not null"`
	UsageCount      int64     `gorm:"default:1"`
	LastUsedAt      time.Time `gorm:"index"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

func (SearchSuggestion) TableName() string {
	return "search_suggestions"
}

type RelatedSearch struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Query        string    `gorm:"type:varchar(500);not null;uniqueIndex:idx_related_pair"`
	RelatedQuery string    `gorm:"type:varchar(500);not null;uniqueIndex:idx_related_pair"`
	Relation     string    `gorm:"type:varchar(20);default:'related'"`
	Strength     float64   `gorm:"default:0.5"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (RelatedSearch) TableName() string {
	return "related_searches"
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

type SearchRelation string

const (
	RelationSynonym  SearchRelation = "synonym"
	RelationBroader  SearchRelation = "broader"
	RelationNarrower SearchRelation = "narrower"
	RelationRelated  SearchRelation = "related"
)

// SearchSuggestion is a write-through cache entry built from observed query
// traffic, keyed by the normalized query. Not user-authored.
type SearchSuggestion struct {
	Id              uuid.UUID
	NormalizedQuery string
	DisplayText     string
	UsageCount      int64
	LastUsedAt      time.Time
	CreatedAt       time.Time
}

// RelatedSearch links two normalized queries with a typed relation and a
// strength score in [0,1].
type RelatedSearch struct {
	Id           uuid.UUID
	Query        string
	RelatedQuery string
	Relation     SearchRelation
	Strength     float64
	CreatedAt    time.Time
}

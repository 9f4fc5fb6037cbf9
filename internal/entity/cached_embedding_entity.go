package entity

import (
	"time"

	"github.com/google/uuid"
)

// CachedEmbedding is a content-addressed cache row: identical normalized text
// always maps to the same ContentHash, so identical inputs reuse identical
// vectors. Eviction is usage-count + recency based.
type CachedEmbedding struct {
	Id          uuid.UUID
	ContentHash string
	Model       string
	Embedding   []float32
	UsageCount  int64
	LastUsedAt  time.Time
	CreatedAt   time.Time
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentChunk is the smallest retrievable unit of document text. A chunk
// carries at most one embedding; chunks without one are invisible to vector
// search.
type DocumentChunk struct {
	Id              uuid.UUID
	DocumentId      uuid.UUID
	Content         string
	ChunkIndex      int
	Language        string
	Keywords        []string
	ImportanceScore float64
	Embedding       []float32
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// ScoredChunk is a vector search hit: the chunk plus its cosine similarity and
// the owning document's fields needed by the reranker.
type ScoredChunk struct {
	Chunk             *DocumentChunk
	Similarity        float64
	DocumentTitle     string
	DocumentCategory  string
	DocumentUpdatedAt time.Time
}

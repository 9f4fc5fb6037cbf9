package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id           uuid.UUID
	Title        string
	Category     string
	Language     string
	WarehouseId  *uuid.UUID
	DepartmentId *uuid.UUID
	Tags         []string
	// Embedding is the mean of the document's chunk vectors, recomputed by the
	// ingestion consumer. Nil until at least one chunk has been embedded.
	Embedding []float32
	ViewCount int
	AvgRating float64
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// SimilarDocument pairs a document with its mean-vector similarity to a
// reference document.
type SimilarDocument struct {
	Document   *Document
	Similarity float64
}

package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDocumentRequest struct {
	Title        string     `json:"title" validate:"required,max=500"`
	Content      string     `json:"content" validate:"required"`
	Category     string     `json:"category" validate:"required,max=100"`
	Language     string     `json:"language" validate:"omitempty,max=10"`
	Tags         []string   `json:"tags"`
	WarehouseId  *uuid.UUID `json:"warehouse_id"`
	DepartmentId *uuid.UUID `json:"department_id"`
}

type CreateDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdateDocumentRequest struct {
	Id       uuid.UUID
	Title    string   `json:"title" validate:"required,max=500"`
	Content  string   `json:"content" validate:"required"`
	Category string   `json:"category" validate:"required,max=100"`
	Language string   `json:"language" validate:"omitempty,max=10"`
	Tags     []string `json:"tags"`
}

type UpdateDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowDocumentResponse struct {
	Id           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Category     string     `json:"category"`
	Language     string     `json:"language"`
	Tags         []string   `json:"tags"`
	WarehouseId  *uuid.UUID `json:"warehouse_id"`
	DepartmentId *uuid.UUID `json:"department_id"`
	ViewCount    int64      `json:"view_count"`
	ChunkCount   int        `json:"chunk_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type SimilarDocumentItem struct {
	Id         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	Language   string    `json:"language"`
	Similarity float64   `json:"similarity"`
}

type SimilarDocumentsResponse struct {
	Documents []SimilarDocumentItem `json:"documents"`
}

// PublishEmbedDocumentMessage is the queue payload that triggers chunk
// re-embedding for one document.
type PublishEmbedDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}

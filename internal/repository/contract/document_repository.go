package contract

import (
	"context"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	Update(ctx context.Context, doc *entity.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	IncrementViewCount(ctx context.Context, id uuid.UUID) error

	// UpdateEmbedding replaces the document's mean chunk vector.
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error

	// FindSimilar compares the document's mean vector against all other
	// documents' mean vectors, descending by cosine similarity.
	FindSimilar(ctx context.Context, documentId uuid.UUID, limit int) ([]*entity.SimilarDocument, error)
}

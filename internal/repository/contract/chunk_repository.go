package contract

import (
	"context"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/specification"

	"github.com/google/uuid"
)

type ChunkRepository interface {
	Create(ctx context.Context, chunk *entity.DocumentChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// UpdateEmbedding sets one chunk's vector in place, keeping its id stable
	// so feedback rows referencing the chunk survive re-embedding.
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error

	// SearchSimilar runs a filtered approximate-nearest-neighbor query over
	// embedded chunks. Similarity is cosine (1 - cosine distance); rows below
	// threshold are excluded; ordering is similarity DESC with document
	// recency as the deterministic tie breaker. Distance computation and
	// top-K selection happen server side.
	SearchSimilar(ctx context.Context, embedding []float32, limit, offset int, threshold float64, filters entity.SearchFilters) ([]*entity.ScoredChunk, error)

	// CountSimilar returns how many embedded chunks clear the threshold under
	// the same filters, for totalCount reporting.
	CountSimilar(ctx context.Context, embedding []float32, threshold float64, filters entity.SearchFilters) (int64, error)
}

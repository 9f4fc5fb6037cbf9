package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/mapper"
	"github.com/mustafa-mbari/aiwmsa/internal/model"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/contract"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChunkMapper
}

func NewChunkRepository(db *gorm.DB) contract.ChunkRepository {
	return &ChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewChunkMapper(),
	}
}

func (r *ChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChunkRepositoryImpl) Create(ctx context.Context, chunk *entity.DocumentChunk) error {
	m := r.mapper.ToModel(chunk)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *ChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	models := r.mapper.ToModels(chunks)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ChunkRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.DocumentChunk{}).Error
}

func (r *ChunkRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error) {
	var m model.DocumentChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	var models []*model.DocumentChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.DocumentChunk{}).Count(&count).Error
	return count, err
}

func (r *ChunkRepositoryImpl) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	v := pgvector.NewVector(embedding)
	return r.db.WithContext(ctx).
		Model(&model.DocumentChunk{}).
		Where("id = ?", id).
		UpdateColumn("embedding", v).Error
}

// filteredSimilarity builds the shared base of the similarity queries: joined
// with documents, restricted to embedded, live rows, above threshold, with the
// typed filter set AND-composed on top.
func (r *ChunkRepositoryImpl) filteredSimilarity(ctx context.Context, queryVector pgvector.Vector, threshold float64, filters entity.SearchFilters) *gorm.DB {
	q := r.db.WithContext(ctx).
		Table("document_chunks").
		Joins("JOIN documents ON documents.id = document_chunks.document_id").
		Where("document_chunks.embedding IS NOT NULL").
		Where("document_chunks.deleted_at IS NULL").
		Where("documents.deleted_at IS NULL").
		Where("1 - (document_chunks.embedding <=> ?) >= ?", queryVector, threshold)

	if filters.DocumentId != nil {
		q = q.Where("document_chunks.document_id = ?", *filters.DocumentId)
	}
	if filters.WarehouseId != nil {
		q = q.Where("documents.warehouse_id = ?", *filters.WarehouseId)
	}
	if filters.DepartmentId != nil {
		q = q.Where("documents.department_id = ?", *filters.DepartmentId)
	}
	if filters.DocumentType != "" {
		q = q.Where("documents.category = ?", filters.DocumentType)
	}
	if len(filters.Categories) > 0 {
		q = q.Where("documents.category IN ?", filters.Categories)
	}
	if filters.Language != "" {
		q = q.Where("documents.language = ?", filters.Language)
	}
	if filters.DateFrom != nil {
		q = q.Where("documents.created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		q = q.Where("documents.created_at <= ?", *filters.DateTo)
	}
	if len(filters.Tags) > 0 {
		raw, _ := json.Marshal(filters.Tags)
		q = q.Where("documents.tags @> ?", datatypes.JSON(raw))
	}

	return q
}

func (r *ChunkRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit, offset int, threshold float64, filters entity.SearchFilters) ([]*entity.ScoredChunk, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	// Cosine distance in pgvector is 1 - cosine_similarity, so
	// 1 - (embedding <=> query_vector) recovers the similarity score.
	type result struct {
		model.DocumentChunk
		Similarity        float64
		DocumentTitle     string
		DocumentCategory  string
		DocumentUpdatedAt time.Time
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.filteredSimilarity(ctx, queryVector, threshold, filters).
		Select(`document_chunks.*,
			1 - (document_chunks.embedding <=> ?) AS similarity,
			documents.title AS document_title,
			documents.category AS document_category,
			documents.updated_at AS document_updated_at`, queryVector).
		// Ties broken by document recency, then chunk id, so ordering is
		// reproducible across runs.
		Order("similarity DESC, documents.created_at DESC, document_chunks.id ASC").
		Limit(limit).
		Offset(offset).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*entity.ScoredChunk, len(results))
	for i, res := range results {
		scored[i] = &entity.ScoredChunk{
			Chunk:             r.mapper.ToEntity(&res.DocumentChunk),
			Similarity:        res.Similarity,
			DocumentTitle:     res.DocumentTitle,
			DocumentCategory:  res.DocumentCategory,
			DocumentUpdatedAt: res.DocumentUpdatedAt,
		}
	}
	return scored, nil
}

func (r *ChunkRepositoryImpl) CountSimilar(ctx context.Context, embedding []float32, threshold float64, filters entity.SearchFilters) (int64, error) {
	var count int64
	queryVector := pgvector.NewVector(embedding)
	err := r.filteredSimilarity(ctx, queryVector, threshold, filters).Count(&count).Error
	return count, err
}

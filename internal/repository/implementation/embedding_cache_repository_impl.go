package implementation

import (
	"context"
	"errors"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/model"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmbeddingCacheRepositoryImpl struct {
	db *gorm.DB
}

func NewEmbeddingCacheRepository(db *gorm.DB) contract.EmbeddingCacheRepository {
	return &EmbeddingCacheRepositoryImpl{db: db}
}

func (r *EmbeddingCacheRepositoryImpl) FindByHash(ctx context.Context, contentHash, embeddingModel string) (*entity.CachedEmbedding, error) {
	var m model.CachedEmbedding
	err := r.db.WithContext(ctx).
		Where("content_hash = ? AND model = ?", contentHash, embeddingModel).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &entity.CachedEmbedding{
		Id:          m.Id,
		ContentHash: m.ContentHash,
		Model:       m.Model,
		Embedding:   m.Embedding.Slice(),
		UsageCount:  m.UsageCount,
		LastUsedAt:  m.LastUsedAt,
		CreatedAt:   m.CreatedAt,
	}, nil
}

func (r *EmbeddingCacheRepositoryImpl) Save(ctx context.Context, cached *entity.CachedEmbedding) error {
	m := &model.CachedEmbedding{
		Id:          cached.Id,
		ContentHash: cached.ContentHash,
		Model:       cached.Model,
		Embedding:   pgvector.NewVector(cached.Embedding),
		UsageCount:  cached.UsageCount,
		LastUsedAt:  cached.LastUsedAt,
	}

	// Two writers may embed the same text concurrently; the vector is
	// deterministic per (hash, model), so keeping the first row is fine.
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_hash"}},
		DoNothing: true,
	}).Create(m).Error
	if err != nil {
		return err
	}

	cached.Id = m.Id
	return nil
}

func (r *EmbeddingCacheRepositoryImpl) Touch(ctx context.Context, contentHash string) error {
	return r.db.WithContext(ctx).
		Model(&model.CachedEmbedding{}).
		Where("content_hash = ?", contentHash).
		Updates(map[string]interface{}{
			"usage_count":  gorm.Expr("usage_count + 1"),
			"last_used_at": time.Now(),
		}).Error
}

func (r *EmbeddingCacheRepositoryImpl) Evict(ctx context.Context, notUsedSince time.Time, maxUsage int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("last_used_at < ? AND usage_count <= ?", notUsedSince, maxUsage).
		Delete(&model.CachedEmbedding{})
	return result.RowsAffected, result.Error
}

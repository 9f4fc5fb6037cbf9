package contract

import (
	"context"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
)

type EmbeddingCacheRepository interface {
	// FindByHash returns the cached vector for a content hash and model, or
	// nil when absent.
	FindByHash(ctx context.Context, contentHash, model string) (*entity.CachedEmbedding, error)

	Save(ctx context.Context, cached *entity.CachedEmbedding) error

	// Touch bumps usage_count and last_used_at on a hit.
	Touch(ctx context.Context, contentHash string) error

	// Evict removes entries not used since the cutoff whose usage count is at
	// or below maxUsage. Returns the number of rows removed.
	Evict(ctx context.Context, notUsedSince time.Time, maxUsage int64) (int64, error)
}

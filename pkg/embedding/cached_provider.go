package embedding

import (
	"context"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/contract"
	"github.com/mustafa-mbari/aiwmsa/pkg/utils"

	gocache "github.com/patrickmn/go-cache"
)

// CachedProvider decorates a Provider with two content-addressed tiers: an
// in-process go-cache for hot keys and the cached_embeddings table shared
// across instances. Keys are SHA-256 of the normalized text, so whitespace
// and casing variants of the same content hit the same entry.
type CachedProvider struct {
	inner Provider
	repo  contract.EmbeddingCacheRepository
	fast  *gocache.Cache
}

func NewCachedProvider(inner Provider, repo contract.EmbeddingCacheRepository, fastTTL time.Duration) Provider {
	return &CachedProvider{
		inner: inner,
		repo:  repo,
		fast:  gocache.New(fastTTL, 2*fastTTL),
	}
}

func (p *CachedProvider) Dimensions() int {
	return p.inner.Dimensions()
}

func (p *CachedProvider) Model() string {
	return p.inner.Model()
}

func (p *CachedProvider) lookup(ctx context.Context, hash string) []float32 {
	if cached, found := p.fast.Get(hash); found {
		return cached.([]float32)
	}

	row, err := p.repo.FindByHash(ctx, hash, p.inner.Model())
	if err != nil || row == nil {
		return nil
	}

	// Touch failures are invisible to the caller; the hit still counts.
	_ = p.repo.Touch(ctx, hash)
	p.fast.SetDefault(hash, row.Embedding)
	return row.Embedding
}

func (p *CachedProvider) store(ctx context.Context, hash string, vector []float32) {
	p.fast.SetDefault(hash, vector)
	_ = p.repo.Save(ctx, &entity.CachedEmbedding{
		ContentHash: hash,
		Model:       p.inner.Model(),
		Embedding:   vector,
		UsageCount:  1,
		LastUsedAt:  time.Now(),
	})
}

func (p *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	hash := utils.HashText(text)
	if vector := p.lookup(ctx, hash); vector != nil {
		return vector, nil
	}

	vector, err := p.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	p.store(ctx, hash, vector)
	return vector, nil
}

func (p *CachedProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))

	misses := make([]string, 0, len(texts))
	missIdx := make([]int, 0, len(texts))
	missHash := make([]string, 0, len(texts))
	for i, text := range texts {
		hash := utils.HashText(text)
		if vector := p.lookup(ctx, hash); vector != nil {
			results[i] = vector
			continue
		}
		misses = append(misses, text)
		missIdx = append(missIdx, i)
		missHash = append(missHash, hash)
	}
	if len(misses) == 0 {
		return results, nil
	}

	fetched, err := p.inner.EmbedBatch(ctx, misses)
	if err != nil {
		return results, err
	}

	for j, vector := range fetched {
		if vector == nil {
			continue
		}
		results[missIdx[j]] = vector
		p.store(ctx, missHash[j], vector)
	}
	return results, nil
}

package search

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/config"
	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/contract"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/specification"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/unitofwork"
	"github.com/mustafa-mbari/aiwmsa/pkg/cache"
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/rerank"
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/suggest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
	hook  func(ctx context.Context) ([]float32, error)
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.hook != nil {
		return f.hook(ctx)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i], _ = f.Embed(ctx, texts[i])
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return 3 }
func (f *fakeEmbedder) Model() string   { return "fake-embedding" }

type fakeChunkRepo struct {
	hits      []*entity.ScoredChunk
	searchErr error
	total     int64
	countErr  error

	gotLimit  int
	gotOffset int
}

func (f *fakeChunkRepo) Create(ctx context.Context, chunk *entity.DocumentChunk) error { return nil }
func (f *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	return nil
}
func (f *fakeChunkRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return nil
}
func (f *fakeChunkRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error) {
	return nil, nil
}
func (f *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	return nil, nil
}
func (f *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}
func (f *fakeChunkRepo) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	return nil
}

func (f *fakeChunkRepo) SearchSimilar(ctx context.Context, embedding []float32, limit, offset int, threshold float64, filters entity.SearchFilters) ([]*entity.ScoredChunk, error) {
	f.gotLimit = limit
	f.gotOffset = offset
	return f.hits, f.searchErr
}

func (f *fakeChunkRepo) CountSimilar(ctx context.Context, embedding []float32, threshold float64, filters entity.SearchFilters) (int64, error) {
	return f.total, f.countErr
}

type fakeSearchLog struct {
	mu      sync.Mutex
	entries []*entity.SearchQuery
}

func (f *fakeSearchLog) Create(ctx context.Context, query *entity.SearchQuery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, query)
	return nil
}

func (f *fakeSearchLog) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SearchQuery, error) {
	return nil, nil
}
func (f *fakeSearchLog) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SearchQuery, error) {
	return nil, nil
}
func (f *fakeSearchLog) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}
func (f *fakeSearchLog) VolumesSince(ctx context.Context, since time.Time, limit int) ([]*contract.QueryVolume, error) {
	return nil, nil
}

func (f *fakeSearchLog) snapshot() []*entity.SearchQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.SearchQuery, len(f.entries))
	copy(out, f.entries)
	return out
}

type fakeSuggestRepo struct {
	mu      sync.Mutex
	related []*entity.RelatedSearch
}

func (f *fakeSuggestRepo) UpsertSuggestion(ctx context.Context, normalizedQuery, displayText string) error {
	return nil
}
func (f *fakeSuggestRepo) FindByPrefix(ctx context.Context, prefix string, limit int) ([]*entity.SearchSuggestion, error) {
	return nil, nil
}
func (f *fakeSuggestRepo) UpsertRelated(ctx context.Context, related *entity.RelatedSearch) error {
	return nil
}
func (f *fakeSuggestRepo) FindRelated(ctx context.Context, normalizedQuery string, limit int) ([]*entity.RelatedSearch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.related, nil
}

// fakeUow satisfies the unit-of-work surface the orchestrator touches.
type fakeUow struct {
	chunks    *fakeChunkRepo
	searchLog *fakeSearchLog
	suggest   *fakeSuggestRepo
}

func (f *fakeUow) Begin(ctx context.Context) error { return nil }
func (f *fakeUow) Commit() error                   { return nil }
func (f *fakeUow) Rollback() error                 { return nil }

func (f *fakeUow) DocumentRepository() contract.DocumentRepository             { return nil }
func (f *fakeUow) ChunkRepository() contract.ChunkRepository                   { return f.chunks }
func (f *fakeUow) SearchQueryRepository() contract.SearchQueryRepository       { return f.searchLog }
func (f *fakeUow) FeedbackRepository() contract.FeedbackRepository             { return nil }
func (f *fakeUow) EmbeddingCacheRepository() contract.EmbeddingCacheRepository { return nil }
func (f *fakeUow) ConversationRepository() contract.ConversationRepository     { return nil }
func (f *fakeUow) SuggestionRepository() contract.SuggestionRepository         { return nil }
func (f *fakeUow) UsageRepository() contract.UsageRepository                   { return nil }

type fakeFactory struct {
	uow *fakeUow
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

func testConfig() config.SearchConfig {
	return config.SearchConfig{
		DefaultLimit:      10,
		MaxLimit:          50,
		Threshold:         0.5,
		TermOverlapWeight: 0.1,
		RecencyWeekBonus:  0.05,
		RecencyMonthBonus: 0.02,
		TitleMatchBonus:   0.15,
		SuggestionLimit:   5,
	}
}

type orchestratorFixture struct {
	orchestrator *Orchestrator
	embedder     *fakeEmbedder
	chunks       *fakeChunkRepo
	searchLog    *fakeSearchLog
	suggestRepo  *fakeSuggestRepo
}

// memoryResponseCache round-trips pages through JSON like the redis-backed
// cache does, so hits come back as decoded copies rather than shared pointers.
type memoryResponseCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryResponseCache() *memoryResponseCache {
	return &memoryResponseCache{entries: map[string][]byte{}}
}

func (c *memoryResponseCache) Get(ctx context.Context, key string, dest interface{}) bool {
	c.mu.Lock()
	raw, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *memoryResponseCache) Set(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.entries[key] = raw
	c.mu.Unlock()
}

func newFixture() *orchestratorFixture {
	return newFixtureWithCache(cache.NewResponseCache(nil, time.Minute))
}

func newFixtureWithCache(responses ResponseCache) *orchestratorFixture {
	embedder := &fakeEmbedder{}
	chunks := &fakeChunkRepo{}
	searchLog := &fakeSearchLog{}
	suggestRepo := &fakeSuggestRepo{}

	uow := &fakeUow{chunks: chunks, searchLog: searchLog, suggest: suggestRepo}
	cfg := testConfig()

	orchestrator := NewOrchestrator(
		&fakeFactory{uow: uow},
		embedder,
		rerank.NewEngine(cfg, nil),
		suggest.NewSuggester(suggestRepo, cfg.SuggestionLimit),
		responses,
		cfg,
		nopLogger{},
	)

	return &orchestratorFixture{
		orchestrator: orchestrator,
		embedder:     embedder,
		chunks:       chunks,
		searchLog:    searchLog,
		suggestRepo:  suggestRepo,
	}
}

func scoredHit(content, title string, similarity float64) *entity.ScoredChunk {
	return &entity.ScoredChunk{
		Chunk: &entity.DocumentChunk{
			Id:         uuid.New(),
			DocumentId: uuid.New(),
			Content:    content,
		},
		Similarity:        similarity,
		DocumentTitle:     title,
		DocumentUpdatedAt: time.Now().Add(-90 * 24 * time.Hour),
	}
}

func TestSearchRejectsInvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"query too short", Request{Query: "x"}},
		{"query whitespace only", Request{Query: "   "}},
		{"negative offset", Request{Query: "forklift", Offset: -1}},
		{"offset beyond window", Request{Query: "forklift", Offset: maxOffset + 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			resp, err := f.orchestrator.Search(context.Background(), tt.req)
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
}

func TestSearchReturnsRerankedPage(t *testing.T) {
	f := newFixture()
	f.chunks.hits = []*entity.ScoredChunk{
		scoredHit("unrelated content", "Docs", 0.80),
		scoredHit("forklift charging procedure steps", "Docs", 0.80),
	}
	f.chunks.total = 42

	resp, err := f.orchestrator.Search(context.Background(), Request{Query: "forklift charging"})
	require.NoError(t, err)
	require.NotNil(t, resp)

	require.Len(t, resp.Results, 2)
	// Term overlap promotes the matching chunk past the similarity tie.
	assert.Equal(t, "forklift charging procedure steps", resp.Results[0].Content)
	assert.Greater(t, resp.Results[0].FinalScore, resp.Results[1].FinalScore)
	assert.Equal(t, int64(42), resp.TotalCount)
	assert.False(t, resp.Cached)
	assert.NotEqual(t, uuid.Nil, resp.QueryId)
	assert.Equal(t, 1, f.embedder.calls)
	assert.Equal(t, 10, f.chunks.gotLimit) // default limit applied
}

func TestSearchCapsLimit(t *testing.T) {
	f := newFixture()
	_, err := f.orchestrator.Search(context.Background(), Request{Query: "forklift", Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 50, f.chunks.gotLimit)
}

func TestSearchSuggestionsOnlyOnFirstPage(t *testing.T) {
	f := newFixture()
	f.suggestRepo.related = []*entity.RelatedSearch{{RelatedQuery: "forklift inspection"}}
	f.chunks.hits = []*entity.ScoredChunk{scoredHit("text", "Docs", 0.9)}

	first, err := f.orchestrator.Search(context.Background(), Request{Query: "forklift safety"})
	require.NoError(t, err)
	assert.Equal(t, []string{"forklift inspection"}, first.Suggestions)

	second, err := f.orchestrator.Search(context.Background(), Request{Query: "forklift safety", Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, second.Suggestions)
}

func TestSearchCountFailureFallsBackToLowerBound(t *testing.T) {
	f := newFixture()
	f.chunks.hits = []*entity.ScoredChunk{
		scoredHit("a", "Docs", 0.9),
		scoredHit("b", "Docs", 0.8),
	}
	f.chunks.countErr = errors.New("statement timeout")

	resp, err := f.orchestrator.Search(context.Background(), Request{Query: "forklift", Offset: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(22), resp.TotalCount)
}

func TestSearchStoreFailureIsUnavailable(t *testing.T) {
	f := newFixture()
	f.chunks.searchErr = errors.New("connection refused")

	resp, err := f.orchestrator.Search(context.Background(), Request{Query: "forklift"})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrSearchUnavailable)

	// Failures land in the search log too.
	require.Eventually(t, func() bool {
		return len(f.searchLog.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)

	entry := f.searchLog.snapshot()[0]
	assert.False(t, entry.Successful)
	assert.Contains(t, entry.ErrorMessage, "connection refused")
}

func TestSearchLogsSuccess(t *testing.T) {
	f := newFixture()
	f.chunks.hits = []*entity.ScoredChunk{scoredHit("text", "Docs", 0.9)}

	userId := uuid.New()
	_, err := f.orchestrator.Search(context.Background(), Request{
		Query:    "forklift safety",
		UserId:   &userId,
		Language: "en",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(f.searchLog.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)

	entry := f.searchLog.snapshot()[0]
	assert.True(t, entry.Successful)
	assert.Equal(t, "forklift safety", entry.QueryText)
	assert.Equal(t, 1, entry.ResultsCount)
	assert.Equal(t, &userId, entry.UserId)
	assert.Equal(t, "en", entry.Language)
}

func TestSearchSupersededReturnsCancelled(t *testing.T) {
	f := newFixture()

	// The embed step observes the cancellation a competing search caused.
	f.embedder.hook = func(ctx context.Context) ([]float32, error) {
		_, release := f.orchestrator.tracker.Begin(context.Background(), "client-a")
		defer release()
		<-ctx.Done()
		return nil, ctx.Err()
	}

	resp, err := f.orchestrator.Search(context.Background(), Request{
		Query:     "forklift",
		ClientKey: "client-a",
	})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestLoadMoreRequiresOffset(t *testing.T) {
	f := newFixture()

	resp, err := f.orchestrator.LoadMore(context.Background(), Request{Query: "forklift"})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrInvalidQuery)

	f.chunks.hits = []*entity.ScoredChunk{scoredHit("text", "Docs", 0.9)}
	page, err := f.orchestrator.LoadMore(context.Background(), Request{Query: "forklift", Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, f.chunks.gotOffset)
	assert.Empty(t, page.Suggestions)
}

func TestRetrieveUsesCallerThreshold(t *testing.T) {
	f := newFixture()
	f.chunks.hits = []*entity.ScoredChunk{
		scoredHit("relevant answer context", "Docs", 0.95),
	}

	hits, err := f.orchestrator.Retrieve(context.Background(), "forklift charging", 5, 0.7, entity.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 0.95, hits[0].Scored.Similarity)
	assert.Equal(t, 5, f.chunks.gotLimit)
}

func TestSearchCacheHitIsIdempotent(t *testing.T) {
	f := newFixtureWithCache(newMemoryResponseCache())
	f.chunks.hits = []*entity.ScoredChunk{
		scoredHit("forklift battery procedure", "Forklift Manual", 0.92),
		scoredHit("unrelated content", "Other", 0.70),
	}
	f.chunks.total = 2

	req := Request{Query: "forklift battery", Language: "en"}

	first, err := f.orchestrator.Search(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := f.orchestrator.Search(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)

	// The cached pass never reaches the embedder or the store: identical
	// request within the TTL, identical page back.
	assert.Equal(t, 1, f.embedder.calls)
	assert.Equal(t, first.QueryId, second.QueryId)
	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, first.TotalCount, second.TotalCount)

	// A different page misses the cache and embeds again.
	_, err = f.orchestrator.Search(context.Background(), Request{Query: "forklift battery", Offset: 10, Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, 2, f.embedder.calls)
}

package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/config"
	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/pkg/logger"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/unitofwork"
	"github.com/mustafa-mbari/aiwmsa/pkg/cache"
	"github.com/mustafa-mbari/aiwmsa/pkg/embedding"
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/rerank"
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/suggest"
	"github.com/mustafa-mbari/aiwmsa/pkg/utils"

	"github.com/google/uuid"
)

const (
	minQueryChars = 2
	maxQueryChars = 500
	maxOffset     = 1000
)

// Request is one retrieval request after transport decoding.
type Request struct {
	Query         string
	Limit         int
	Offset        int
	Filters       entity.SearchFilters
	UserId        *uuid.UUID
	ClientKey     string // cancellation scope; empty disables supersession
	PreviousQuery string // feeds the related-searches graph
	Language      string
}

// Result is one reranked hit shaped for transport.
type Result struct {
	ChunkId          uuid.UUID `json:"chunkId"`
	DocumentId       uuid.UUID `json:"documentId"`
	DocumentTitle    string    `json:"documentTitle"`
	DocumentCategory string    `json:"documentCategory"`
	Content          string    `json:"content"`
	Similarity       float64   `json:"similarity"`
	FinalScore       float64   `json:"finalScore"`
	Highlights       []string  `json:"highlights,omitempty"`
}

// Response carries one result page plus pipeline metadata.
type Response struct {
	QueryId         uuid.UUID `json:"queryId"`
	Results         []Result  `json:"results"`
	TotalCount      int64     `json:"totalCount"`
	Suggestions     []string  `json:"suggestions,omitempty"`
	ExecutionTimeMs int64     `json:"executionTimeMs"`
	Cached          bool      `json:"cached"`
}

// ResponseCache is the orchestrator's view of the page cache;
// *cache.ResponseCache satisfies it.
type ResponseCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{})
}

// Orchestrator runs the retrieval pipeline: validate, consult the response
// cache, embed, vector-search, rerank, suggest, then log. Embedding and the
// vector store are the only hard dependencies; cache, suggestions, and
// logging all degrade silently.
type Orchestrator struct {
	factory   unitofwork.RepositoryFactory
	embedder  embedding.Provider
	reranker  *rerank.Engine
	suggester *suggest.Suggester
	responses ResponseCache
	tracker   *InflightTracker
	cfg       config.SearchConfig
	log       logger.ILogger
}

func NewOrchestrator(
	factory unitofwork.RepositoryFactory,
	embedder embedding.Provider,
	reranker *rerank.Engine,
	suggester *suggest.Suggester,
	responses ResponseCache,
	cfg config.SearchConfig,
	log logger.ILogger,
) *Orchestrator {
	return &Orchestrator{
		factory:   factory,
		embedder:  embedder,
		reranker:  reranker,
		suggester: suggester,
		responses: responses,
		tracker:   NewInflightTracker(),
		cfg:       cfg,
		log:       log,
	}
}

// normalizeRequest validates and applies defaults in place.
func (o *Orchestrator) normalizeRequest(req *Request) error {
	trimmed := strings.TrimSpace(req.Query)
	runeCount := len([]rune(trimmed))
	if runeCount < minQueryChars || runeCount > maxQueryChars {
		return fmt.Errorf("%w: query length %d outside [%d, %d]", ErrInvalidQuery, runeCount, minQueryChars, maxQueryChars)
	}
	req.Query = trimmed

	if req.Limit <= 0 {
		req.Limit = o.cfg.DefaultLimit
	}
	if req.Limit > o.cfg.MaxLimit {
		req.Limit = o.cfg.MaxLimit
	}
	if req.Offset < 0 {
		return fmt.Errorf("%w: negative offset", ErrInvalidQuery)
	}
	if req.Offset > maxOffset {
		return fmt.Errorf("%w: offset %d exceeds %d", ErrInvalidQuery, req.Offset, maxOffset)
	}
	return nil
}

// Search runs one full pipeline pass.
func (o *Orchestrator) Search(ctx context.Context, req Request) (*Response, error) {
	started := time.Now()

	if err := o.normalizeRequest(&req); err != nil {
		o.logQuery(req, 0, time.Since(started), err)
		return nil, err
	}

	searchCtx, release := o.tracker.Begin(ctx, req.ClientKey)
	defer release()

	cacheKey := cache.SearchKey(req.Query, req.Limit, req.Offset, req.Filters)
	var cached Response
	if o.responses.Get(searchCtx, cacheKey, &cached) {
		cached.Cached = true
		cached.ExecutionTimeMs = time.Since(started).Milliseconds()
		o.logQuery(req, len(cached.Results), time.Since(started), nil)
		return &cached, nil
	}

	resp, err := o.retrieve(searchCtx, req)
	if err != nil {
		if errors.Is(searchCtx.Err(), context.Canceled) && ctx.Err() == nil {
			return nil, ErrCancelled
		}
		o.logQuery(req, 0, time.Since(started), err)
		return nil, err
	}

	resp.ExecutionTimeMs = time.Since(started).Milliseconds()
	o.responses.Set(searchCtx, cacheKey, resp)
	o.logQuery(req, len(resp.Results), time.Since(started), nil)

	return resp, nil
}

// Retrieve runs embed + vector search + rerank and returns the raw reranked
// hits, for callers that need scored chunks rather than a transport page
// (answer synthesis uses this with its own threshold).
func (o *Orchestrator) Retrieve(ctx context.Context, query string, limit int, threshold float64, filters entity.SearchFilters) ([]rerank.Result, error) {
	vector, err := o.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}

	uow := o.factory.NewUnitOfWork(ctx)
	hits, err := uow.ChunkRepository().SearchSimilar(ctx, vector, limit, 0, threshold, filters)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}

	return o.reranker.Rerank(query, hits), nil
}

func (o *Orchestrator) retrieve(ctx context.Context, req Request) (*Response, error) {
	vector, err := o.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}

	uow := o.factory.NewUnitOfWork(ctx)
	chunks := uow.ChunkRepository()

	hits, err := chunks.SearchSimilar(ctx, vector, req.Limit, req.Offset, o.cfg.Threshold, req.Filters)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}

	total, err := chunks.CountSimilar(ctx, vector, o.cfg.Threshold, req.Filters)
	if err != nil {
		// Page content is intact; fall back to a lower bound for the count.
		o.log.Warn("search", "count query failed", map[string]interface{}{"error": err.Error()})
		total = int64(req.Offset + len(hits))
	}

	reranked := o.reranker.Rerank(req.Query, hits)

	results := make([]Result, len(reranked))
	for i, r := range reranked {
		results[i] = Result{
			ChunkId:          r.Scored.Chunk.Id,
			DocumentId:       r.Scored.Chunk.DocumentId,
			DocumentTitle:    r.Scored.DocumentTitle,
			DocumentCategory: r.Scored.DocumentCategory,
			Content:          r.Scored.Chunk.Content,
			Similarity:       r.Scored.Similarity,
			FinalScore:       r.FinalScore,
			Highlights:       r.Highlights,
		}
	}

	resp := &Response{
		QueryId:    uuid.New(),
		Results:    results,
		TotalCount: total,
	}

	// Suggestions only decorate the first page.
	if req.Offset == 0 {
		resp.Suggestions = o.suggester.Suggest(ctx, req.Query, reranked)
	}

	return resp, nil
}

// LoadMore is Search for a subsequent page: same pipeline, no suggestions
// (offset is non-zero), never an answer.
func (o *Orchestrator) LoadMore(ctx context.Context, req Request) (*Response, error) {
	if req.Offset <= 0 {
		return nil, fmt.Errorf("%w: load more requires a positive offset", ErrInvalidQuery)
	}
	return o.Search(ctx, req)
}

// logQuery appends to the search log off the request path. Failed searches
// are recorded too; the log is the raw material for trending and feedback.
func (o *Orchestrator) logQuery(req Request, resultCount int, elapsed time.Duration, searchErr error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		entry := &entity.SearchQuery{
			UserId:          req.UserId,
			QueryText:       req.Query,
			Filters:         req.Filters,
			ResultsCount:    resultCount,
			ExecutionTimeMs: elapsed.Milliseconds(),
			Language:        req.Language,
			Successful:      searchErr == nil,
		}
		if searchErr != nil {
			entry.ErrorMessage = searchErr.Error()
		}

		uow := o.factory.NewUnitOfWork(ctx)
		if err := uow.SearchQueryRepository().Create(ctx, entry); err != nil {
			o.log.Warn("search", "failed to log search query", map[string]interface{}{"error": err.Error()})
		}

		if searchErr == nil && utils.NormalizeText(req.Query) != "" {
			if err := o.suggester.Record(ctx, req.Query, req.PreviousQuery); err != nil {
				o.log.Warn("search", "failed to record suggestion", map[string]interface{}{"error": err.Error()})
			}
		}
	}()
}

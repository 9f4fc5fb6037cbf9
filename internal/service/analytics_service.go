package service

import (
	"context"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/dto"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/specification"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/unitofwork"
	"github.com/mustafa-mbari/aiwmsa/pkg/analytics"
)

type IAnalyticsService interface {
	Trending(ctx context.Context, windowDays, limit int) (*dto.TrendingResponse, error)
	UsageReport(ctx context.Context, from, to time.Time) (*dto.UsageReportResponse, error)
	SearchStats(ctx context.Context, since time.Time) (*dto.SearchStatsResponse, error)

	// EvictEmbeddingCache removes cold cache rows and returns how many were
	// dropped.
	EvictEmbeddingCache(ctx context.Context, notUsedForDays int, maxUsage int64) (int64, error)
}

type analyticsService struct {
	uowFactory unitofwork.RepositoryFactory
	trending   *analytics.Trending
}

func NewAnalyticsService(uowFactory unitofwork.RepositoryFactory, trending *analytics.Trending) IAnalyticsService {
	return &analyticsService{
		uowFactory: uowFactory,
		trending:   trending,
	}
}

func (s *analyticsService) Trending(ctx context.Context, windowDays, limit int) (*dto.TrendingResponse, error) {
	if windowDays <= 0 {
		windowDays = 7
	}
	if limit <= 0 {
		limit = 10
	}

	queries, err := s.trending.Top(ctx, time.Duration(windowDays)*24*time.Hour, limit)
	if err != nil {
		return nil, err
	}

	return &dto.TrendingResponse{
		WindowDays: windowDays,
		Queries:    queries,
	}, nil
}

func (s *analyticsService) UsageReport(ctx context.Context, from, to time.Time) (*dto.UsageReportResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	rows, err := uow.UsageRepository().Range(ctx, from, to)
	if err != nil {
		return nil, err
	}

	resp := &dto.UsageReportResponse{
		From: from,
		To:   to,
		Days: make([]dto.UsageDayItem, len(rows)),
	}
	for i, row := range rows {
		resp.Days[i] = dto.UsageDayItem{
			Day:              row.Day,
			Operation:        row.Operation,
			Requests:         row.Requests,
			PromptTokens:     row.PromptTokens,
			CompletionTokens: row.CompletionTokens,
			EstimatedCost:    row.EstimatedCost,
		}
		resp.TotalRequests += row.Requests
		resp.TotalEstimatedCost += row.EstimatedCost
	}
	return resp, nil
}

func (s *analyticsService) SearchStats(ctx context.Context, since time.Time) (*dto.SearchStatsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	queries := uow.SearchQueryRepository()

	total, err := queries.Count(ctx, specification.CreatedSince{Since: since})
	if err != nil {
		return nil, err
	}
	successful, err := queries.Count(ctx, specification.CreatedSince{Since: since}, specification.SuccessfulOnly{})
	if err != nil {
		return nil, err
	}
	zeroResults, err := queries.Count(ctx,
		specification.CreatedSince{Since: since},
		specification.SuccessfulOnly{},
		specification.Filter("results_count", 0),
	)
	if err != nil {
		return nil, err
	}

	// Average execution time over the window; a full scan is fine at the
	// volumes an admin dashboard queries.
	rows, err := queries.FindAll(ctx, specification.CreatedSince{Since: since})
	if err != nil {
		return nil, err
	}
	var totalMs int64
	for _, row := range rows {
		totalMs += row.ExecutionTimeMs
	}
	avg := 0.0
	if len(rows) > 0 {
		avg = float64(totalMs) / float64(len(rows))
	}

	return &dto.SearchStatsResponse{
		TotalSearches:      total,
		FailedSearches:     total - successful,
		ZeroResultSearches: zeroResults,
		AvgExecutionMs:     avg,
	}, nil
}

func (s *analyticsService) EvictEmbeddingCache(ctx context.Context, notUsedForDays int, maxUsage int64) (int64, error) {
	if notUsedForDays <= 0 {
		notUsedForDays = 30
	}
	cutoff := time.Now().Add(-time.Duration(notUsedForDays) * 24 * time.Hour)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.EmbeddingCacheRepository().Evict(ctx, cutoff, maxUsage)
}

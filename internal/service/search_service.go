package service

import (
	"context"

	"github.com/mustafa-mbari/aiwmsa/internal/dto"
	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/pkg/events"
	pktNats "github.com/mustafa-mbari/aiwmsa/pkg/nats"
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/search"
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/suggest"

	"github.com/google/uuid"
)

type ISearchService interface {
	Search(ctx context.Context, userId *uuid.UUID, clientKey string, req *dto.SearchRequest) (*dto.SearchResponse, error)
	LoadMore(ctx context.Context, userId *uuid.UUID, clientKey string, req *dto.SearchRequest) (*dto.SearchResponse, error)
	Suggestions(ctx context.Context, prefix string) (*dto.SuggestionsResponse, error)
}

// pipeline is the retrieval surface the service drives; *search.Orchestrator
// implements it.
type pipeline interface {
	Search(ctx context.Context, req search.Request) (*search.Response, error)
	LoadMore(ctx context.Context, req search.Request) (*search.Response, error)
}

type searchService struct {
	orchestrator   pipeline
	suggester      *suggest.Suggester
	answerService  IAnswerService
	eventPublisher *pktNats.Publisher
}

func NewSearchService(
	orchestrator pipeline,
	suggester *suggest.Suggester,
	answerService IAnswerService,
	eventPublisher *pktNats.Publisher,
) ISearchService {
	return &searchService{
		orchestrator:   orchestrator,
		suggester:      suggester,
		answerService:  answerService,
		eventPublisher: eventPublisher,
	}
}

func toEntityFilters(f dto.SearchFilters) entity.SearchFilters {
	return entity.SearchFilters{
		WarehouseId:  f.WarehouseId,
		DepartmentId: f.DepartmentId,
		DocumentType: f.DocumentType,
		Language:     f.Language,
		DateFrom:     f.DateFrom,
		DateTo:       f.DateTo,
		Tags:         f.Tags,
		Categories:   f.Categories,
		DocumentId:   f.DocumentId,
	}
}

func (s *searchService) toRequest(userId *uuid.UUID, clientKey string, req *dto.SearchRequest) search.Request {
	return search.Request{
		Query:         req.Query,
		Limit:         req.Limit,
		Offset:        req.Offset,
		Filters:       toEntityFilters(req.Filters),
		UserId:        userId,
		ClientKey:     clientKey,
		PreviousQuery: req.PreviousQuery,
		Language:      req.Language,
	}
}

func (s *searchService) toResponse(resp *search.Response) *dto.SearchResponse {
	return &dto.SearchResponse{
		QueryId:         resp.QueryId,
		Results:         resp.Results,
		TotalCount:      resp.TotalCount,
		Suggestions:     resp.Suggestions,
		ExecutionTimeMs: resp.ExecutionTimeMs,
		Cached:          resp.Cached,
	}
}

func (s *searchService) Search(ctx context.Context, userId *uuid.UUID, clientKey string, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	resp, err := s.orchestrator.Search(ctx, s.toRequest(userId, clientKey, req))
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.NewSearchExecuted(resp.QueryId, req.Query, len(resp.Results), resp.ExecutionTimeMs, true)
		_ = s.eventPublisher.Publish(ctx, evt)
	}

	out := s.toResponse(resp)

	// Answer synthesis is best-effort and reuses the page this search just
	// retrieved; a provider outage degrades the response instead of failing
	// the search that already succeeded.
	if req.IncludeAnswer && len(out.Results) > 0 {
		payload, err := s.answerService.Compose(ctx, req.Query, out.Results, req.Language)
		if err != nil {
			out.AnswerDegraded = true
		} else {
			out.Answer = payload
		}
	}

	return out, nil
}

func (s *searchService) LoadMore(ctx context.Context, userId *uuid.UUID, clientKey string, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	resp, err := s.orchestrator.LoadMore(ctx, s.toRequest(userId, clientKey, req))
	if err != nil {
		return nil, err
	}
	return s.toResponse(resp), nil
}

func (s *searchService) Suggestions(ctx context.Context, prefix string) (*dto.SuggestionsResponse, error) {
	suggestions, err := s.suggester.Prefix(ctx, prefix)
	if err != nil {
		return nil, err
	}

	items := make([]dto.SuggestionItem, len(suggestions))
	for i, suggestion := range suggestions {
		items[i] = dto.SuggestionItem{
			Text:       suggestion.DisplayText,
			UsageCount: suggestion.UsageCount,
		}
	}
	return &dto.SuggestionsResponse{Suggestions: items}, nil
}

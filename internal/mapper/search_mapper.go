package mapper

import (
	"encoding/json"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type SearchQueryMapper struct{}

func NewSearchQueryMapper() *SearchQueryMapper {
	return &SearchQueryMapper{}
}

func (m *SearchQueryMapper) ToEntity(q *model.SearchQuery) *entity.SearchQuery {
	if q == nil {
		return nil
	}

	var embedding []float32
	if q.QueryEmbedding != nil {
		embedding = q.QueryEmbedding.Slice()
	}

	var filters entity.SearchFilters
	if len(q.Filters) > 0 {
		_ = json.Unmarshal(q.Filters, &filters)
	}

	return &entity.SearchQuery{
		Id:              q.Id,
		UserId:          q.UserId,
		QueryText:       q.QueryText,
		QueryEmbedding:  embedding,
		Filters:         filters,
		ResultsCount:    q.ResultsCount,
		ExecutionTimeMs: q.ExecutionTimeMs,
		Language:        q.Language,
		Successful:      q.Successful,
		ErrorMessage:    q.ErrorMessage,
		CreatedAt:       q.CreatedAt,
	}
}

func (m *SearchQueryMapper) ToModel(q *entity.SearchQuery) *model.SearchQuery {
	if q == nil {
		return nil
	}

	var embedding *pgvector.Vector
	if len(q.QueryEmbedding) > 0 {
		v := pgvector.NewVector(q.QueryEmbedding)
		embedding = &v
	}

	var filters datatypes.JSON
	if !q.Filters.IsZero() {
		raw, _ := json.Marshal(q.Filters)
		filters = datatypes.JSON(raw)
	}

	return &model.SearchQuery{
		Id:              q.Id,
		UserId:          q.UserId,
		QueryText:       q.QueryText,
		QueryEmbedding:  embedding,
		Filters:         filters,
		ResultsCount:    q.ResultsCount,
		ExecutionTimeMs: q.ExecutionTimeMs,
		Language:        q.Language,
		Successful:      q.Successful,
		ErrorMessage:    q.ErrorMessage,
		CreatedAt:       q.CreatedAt,
	}
}

type FeedbackMapper struct{}

func NewFeedbackMapper() *FeedbackMapper {
	return &FeedbackMapper{}
}

func (m *FeedbackMapper) ToEntity(f *model.SearchFeedback) *entity.SearchFeedback {
	if f == nil {
		return nil
	}

	var updatedAt *time.Time
	if !f.UpdatedAt.IsZero() {
		t := f.UpdatedAt
		updatedAt = &t
	}

	return &entity.SearchFeedback{
		Id:            f.Id,
		SearchQueryId: f.SearchQueryId,
		UserId:        f.UserId,
		ResultId:      f.ResultId,
		Rating:        entity.FeedbackRating(f.Rating),
		Clicked:       f.Clicked,
		TimeToClickMs: f.TimeToClickMs,
		DwellTimeMs:   f.DwellTimeMs,
		Comment:       f.Comment,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *FeedbackMapper) ToModel(f *entity.SearchFeedback) *model.SearchFeedback {
	if f == nil {
		return nil
	}

	var updatedAt time.Time
	if f.UpdatedAt != nil {
		updatedAt = *f.UpdatedAt
	}

	return &model.SearchFeedback{
		Id:            f.Id,
		SearchQueryId: f.SearchQueryId,
		UserId:        f.UserId,
		ResultId:      f.ResultId,
		Rating:        string(f.Rating),
		Clicked:       f.Clicked,
		TimeToClickMs: f.TimeToClickMs,
		DwellTimeMs:   f.DwellTimeMs,
		Comment:       f.Comment,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

package implementation

import (
	"context"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/model"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SuggestionRepositoryImpl struct {
	db *gorm.DB
}

func NewSuggestionRepository(db *gorm.DB) contract.SuggestionRepository {
	return &SuggestionRepositoryImpl{db: db}
}

func (r *SuggestionRepositoryImpl) UpsertSuggestion(ctx context.Context, normalizedQuery, displayText string) error {
	m := &model.SearchSuggestion{
		NormalizedQuery: normalizedQuery,
		DisplayText:     displayText,
		UsageCount:      1,
		LastUsedAt:      time.Now(),
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "normalized_query"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"usage_count":  gorm.Expr("search_suggestions.usage_count + 1"),
			"last_used_at": time.Now(),
		}),
	}).Create(m).Error
}

func (r *SuggestionRepositoryImpl) FindByPrefix(ctx context.Context, prefix string, limit int) ([]*entity.SearchSuggestion, error) {
	var models []*model.SearchSuggestion
	err := r.db.WithContext(ctx).
		Where("normalized_query LIKE ?", prefix+"%").
		Order("usage_count DESC, last_used_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.SearchSuggestion, len(models))
	for i, m := range models {
		entities[i] = &entity.SearchSuggestion{
			Id:              m.Id,
			NormalizedQuery: m.NormalizedQuery,
			DisplayText:     m.DisplayText,
			UsageCount:      m.UsageCount,
			LastUsedAt:      m.LastUsedAt,
			CreatedAt:       m.CreatedAt,
		}
	}
	return entities, nil
}

func (r *SuggestionRepositoryImpl) UpsertRelated(ctx context.Context, related *entity.RelatedSearch) error {
	m := &model.RelatedSearch{
		Query:        related.Query,
		RelatedQuery: related.RelatedQuery,
		Relation:     string(related.Relation),
		Strength:     related.Strength,
	}

	// Re-observing a pair nudges its strength toward 1 instead of resetting it.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "query"}, {Name: "related_query"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"strength": gorm.Expr("LEAST(related_searches.strength + 0.1, 1.0)"),
		}),
	}).Create(m).Error
}

func (r *SuggestionRepositoryImpl) FindRelated(ctx context.Context, normalizedQuery string, limit int) ([]*entity.RelatedSearch, error) {
	var models []*model.RelatedSearch
	err := r.db.WithContext(ctx).
		Where("query = ?", normalizedQuery).
		Order("strength DESC, created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.RelatedSearch, len(models))
	for i, m := range models {
		entities[i] = &entity.RelatedSearch{
			Id:           m.Id,
			Query:        m.Query,
			RelatedQuery: m.RelatedQuery,
			Relation:     entity.SearchRelation(m.Relation),
			Strength:     m.Strength,
			CreatedAt:    m.CreatedAt,
		}
	}
	return entities, nil
}

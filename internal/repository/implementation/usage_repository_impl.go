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

type UsageRepositoryImpl struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) contract.UsageRepository {
	return &UsageRepositoryImpl{db: db}
}

func (r *UsageRepositoryImpl) Record(ctx context.Context, usage *entity.AiUsage) error {
	m := &model.AiUsage{
		Day:              usage.Day.UTC().Truncate(24 * time.Hour),
		Operation:        usage.Operation,
		Requests:         usage.Requests,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		EstimatedCost:    usage.EstimatedCost,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "day"}, {Name: "operation"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"requests":          gorm.Expr("ai_usage.requests + ?", m.Requests),
			"prompt_tokens":     gorm.Expr("ai_usage.prompt_tokens + ?", m.PromptTokens),
			"completion_tokens": gorm.Expr("ai_usage.completion_tokens + ?", m.CompletionTokens),
			"estimated_cost":    gorm.Expr("ai_usage.estimated_cost + ?", m.EstimatedCost),
		}),
	}).Create(m).Error
}

func (r *UsageRepositoryImpl) Range(ctx context.Context, from, to time.Time) ([]*entity.AiUsage, error) {
	var models []*model.AiUsage
	err := r.db.WithContext(ctx).
		Where("day >= ? AND day <= ?", from.UTC().Truncate(24*time.Hour), to.UTC().Truncate(24*time.Hour)).
		Order("day ASC, operation ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.AiUsage, len(models))
	for i, m := range models {
		entities[i] = &entity.AiUsage{
			Day:              m.Day,
			Operation:        m.Operation,
			Requests:         m.Requests,
			PromptTokens:     m.PromptTokens,
			CompletionTokens: m.CompletionTokens,
			EstimatedCost:    m.EstimatedCost,
		}
	}
	return entities, nil
}

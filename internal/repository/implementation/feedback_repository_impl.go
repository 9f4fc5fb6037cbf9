package implementation

import (
	"context"
	"errors"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/mapper"
	"github.com/mustafa-mbari/aiwmsa/internal/model"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/contract"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FeedbackRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FeedbackMapper
}

func NewFeedbackRepository(db *gorm.DB) contract.FeedbackRepository {
	return &FeedbackRepositoryImpl{
		db:     db,
		mapper: mapper.NewFeedbackMapper(),
	}
}

func (r *FeedbackRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// feedbackConflict targets the NULLS NOT DISTINCT unique index on
// (search_query_id, user_id, result_id), so a resubmission conflicts and
// updates in place whether or not the feedback names a result.
func feedbackConflict() clause.OnConflict {
	return clause.OnConflict{
		Columns: []clause.Column{
			{Name: "search_query_id"},
			{Name: "user_id"},
			{Name: "result_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"rating", "clicked", "time_to_click_ms", "dwell_time_ms", "comment", "updated_at",
		}),
	}
}

func (r *FeedbackRepositoryImpl) Upsert(ctx context.Context, feedback *entity.SearchFeedback) error {
	m := r.mapper.ToModel(feedback)

	// Last write wins per (query, user, result).
	err := r.db.WithContext(ctx).Clauses(feedbackConflict()).Create(m).Error
	if err != nil {
		return err
	}

	*feedback = *r.mapper.ToEntity(m)
	return nil
}

func (r *FeedbackRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SearchFeedback, error) {
	var m model.SearchFeedback
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *FeedbackRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SearchFeedback, error) {
	var models []*model.SearchFeedback
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.SearchFeedback, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *FeedbackRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.SearchFeedback{}).Count(&count).Error
	return count, err
}

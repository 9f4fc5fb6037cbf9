package implementation

import (
	"context"
	"errors"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/mapper"
	"github.com/mustafa-mbari/aiwmsa/internal/model"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/contract"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/specification"

	"gorm.io/gorm"
)

type SearchQueryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SearchQueryMapper
}

func NewSearchQueryRepository(db *gorm.DB) contract.SearchQueryRepository {
	return &SearchQueryRepositoryImpl{
		db:     db,
		mapper: mapper.NewSearchQueryMapper(),
	}
}

func (r *SearchQueryRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SearchQueryRepositoryImpl) Create(ctx context.Context, query *entity.SearchQuery) error {
	m := r.mapper.ToModel(query)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*query = *r.mapper.ToEntity(m)
	return nil
}

func (r *SearchQueryRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SearchQuery, error) {
	var m model.SearchQuery
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SearchQueryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SearchQuery, error) {
	var models []*model.SearchQuery
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.SearchQuery, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *SearchQueryRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.SearchQuery{}).Count(&count).Error
	return count, err
}

func (r *SearchQueryRepositoryImpl) VolumesSince(ctx context.Context, since time.Time, limit int) ([]*contract.QueryVolume, error) {
	if limit <= 0 {
		limit = 50
	}

	var volumes []*contract.QueryVolume
	err := r.db.WithContext(ctx).
		Model(&model.SearchQuery{}).
		Select("LOWER(query_text) AS query_text, COUNT(*) AS count, MAX(created_at) AS last_searched").
		Where("successful = ?", true).
		Where("created_at >= ?", since).
		Group("LOWER(query_text)").
		Order("count DESC").
		Limit(limit).
		Scan(&volumes).Error
	if err != nil {
		return nil, err
	}
	return volumes, nil
}

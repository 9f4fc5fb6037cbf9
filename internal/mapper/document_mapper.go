package mapper

import (
	"encoding/json"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	var embedding []float32
	if d.Embedding != nil {
		embedding = d.Embedding.Slice()
	}

	var tags []string
	if len(d.Tags) > 0 {
		_ = json.Unmarshal(d.Tags, &tags)
	}

	return &entity.Document{
		Id:           d.Id,
		Title:        d.Title,
		Category:     d.Category,
		Language:     d.Language,
		WarehouseId:  d.WarehouseId,
		DepartmentId: d.DepartmentId,
		Tags:         tags,
		Embedding:    embedding,
		ViewCount:    d.ViewCount,
		AvgRating:    d.AvgRating,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	var embedding *pgvector.Vector
	if len(d.Embedding) > 0 {
		v := pgvector.NewVector(d.Embedding)
		embedding = &v
	}

	var tags datatypes.JSON
	if len(d.Tags) > 0 {
		raw, _ := json.Marshal(d.Tags)
		tags = datatypes.JSON(raw)
	}

	return &model.Document{
		Id:           d.Id,
		Title:        d.Title,
		Category:     d.Category,
		Language:     d.Language,
		WarehouseId:  d.WarehouseId,
		DepartmentId: d.DepartmentId,
		Tags:         tags,
		Embedding:    embedding,
		ViewCount:    d.ViewCount,
		AvgRating:    d.AvgRating,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}

package mapper

import (
	"encoding/json"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type ChunkMapper struct{}

func NewChunkMapper() *ChunkMapper {
	return &ChunkMapper{}
}

func (m *ChunkMapper) ToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	var embedding []float32
	if c.Embedding != nil {
		embedding = c.Embedding.Slice()
	}

	var keywords []string
	if len(c.Keywords) > 0 {
		_ = json.Unmarshal(c.Keywords, &keywords)
	}

	return &entity.DocumentChunk{
		Id:              c.Id,
		DocumentId:      c.DocumentId,
		Content:         c.Content,
		ChunkIndex:      c.ChunkIndex,
		Language:        c.Language,
		Keywords:        keywords,
		ImportanceScore: c.ImportanceScore,
		Embedding:       embedding,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *ChunkMapper) ToModel(c *entity.DocumentChunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	var embedding *pgvector.Vector
	if len(c.Embedding) > 0 {
		v := pgvector.NewVector(c.Embedding)
		embedding = &v
	}

	var keywords datatypes.JSON
	if len(c.Keywords) > 0 {
		raw, _ := json.Marshal(c.Keywords)
		keywords = datatypes.JSON(raw)
	}

	return &model.DocumentChunk{
		Id:              c.Id,
		DocumentId:      c.DocumentId,
		Content:         c.Content,
		ChunkIndex:      c.ChunkIndex,
		Language:        c.Language,
		Keywords:        keywords,
		ImportanceScore: c.ImportanceScore,
		Embedding:       embedding,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *ChunkMapper) ToEntities(chunks []*model.DocumentChunk) []*entity.DocumentChunk {
	entities := make([]*entity.DocumentChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *ChunkMapper) ToModels(chunks []*entity.DocumentChunk) []*model.DocumentChunk {
	models := make([]*model.DocumentChunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}

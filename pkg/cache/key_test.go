package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSearchKeyNormalization(t *testing.T) {
	// Whitespace and casing variants of the same query share one key.
	a := SearchKey("Forklift  Safety", 10, 0, entity.SearchFilters{})
	b := SearchKey("  forklift safety ", 10, 0, entity.SearchFilters{})
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "search:"))
}

func TestSearchKeyDiscriminators(t *testing.T) {
	warehouseId := uuid.New()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	base := SearchKey("forklift safety", 10, 0, entity.SearchFilters{})

	tests := []struct {
		name string
		key  string
	}{
		{"different query", SearchKey("pallet jack safety", 10, 0, entity.SearchFilters{})},
		{"different limit", SearchKey("forklift safety", 20, 0, entity.SearchFilters{})},
		{"different offset", SearchKey("forklift safety", 10, 10, entity.SearchFilters{})},
		{"warehouse filter", SearchKey("forklift safety", 10, 0, entity.SearchFilters{WarehouseId: &warehouseId})},
		{"date filter", SearchKey("forklift safety", 10, 0, entity.SearchFilters{DateFrom: &from})},
		{"tag filter", SearchKey("forklift safety", 10, 0, entity.SearchFilters{Tags: []string{"safety"}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, tt.key)
		})
	}
}

func TestSearchKeyStableAcrossCalls(t *testing.T) {
	warehouseId := uuid.New()
	filters := entity.SearchFilters{WarehouseId: &warehouseId, Language: "en", Tags: []string{"a", "b"}}

	first := SearchKey("cold storage", 5, 0, filters)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, SearchKey("cold storage", 5, 0, filters))
	}
}

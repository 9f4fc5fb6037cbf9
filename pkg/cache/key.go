package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/pkg/utils"
)

// SearchKey derives a deterministic response-cache key from the normalized
// query, pagination, and a canonical JSON rendering of the filters. Filter
// struct fields marshal in declaration order, so equal filters always produce
// equal keys.
func SearchKey(query string, limit, offset int, filters entity.SearchFilters) string {
	payload := struct {
		Query   string               `json:"q"`
		Limit   int                  `json:"l"`
		Offset  int                  `json:"o"`
		Filters entity.SearchFilters `json:"f"`
	}{
		Query:   utils.NormalizeText(query),
		Limit:   limit,
		Offset:  offset,
		Filters: filters,
	}

	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return "search:" + hex.EncodeToString(sum[:])
}

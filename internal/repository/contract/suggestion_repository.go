package contract

import (
	"context"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
)

type SuggestionRepository interface {
	// UpsertSuggestion creates or bumps the write-through suggestion row for
	// a normalized query.
	UpsertSuggestion(ctx context.Context, normalizedQuery, displayText string) error

	FindByPrefix(ctx context.Context, prefix string, limit int) ([]*entity.SearchSuggestion, error)

	// UpsertRelated records an observed (query, relatedQuery) pair,
	// strengthening it when already present.
	UpsertRelated(ctx context.Context, related *entity.RelatedSearch) error

	FindRelated(ctx context.Context, normalizedQuery string, limit int) ([]*entity.RelatedSearch, error)
}

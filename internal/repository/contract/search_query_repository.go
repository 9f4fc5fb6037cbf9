package contract

import (
	"context"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/specification"
)

// QueryVolume is an aggregate over the search log: how often a normalized
// query text was searched and when it was last seen.
type QueryVolume struct {
	QueryText    string
	Count        int64
	LastSearched time.Time
}

type SearchQueryRepository interface {
	// Create appends one log row. The log is append-only; there is no update.
	Create(ctx context.Context, query *entity.SearchQuery) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SearchQuery, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SearchQuery, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// VolumesSince aggregates successful searches since the given time,
	// grouped by lower-cased query text.
	VolumesSince(ctx context.Context, since time.Time, limit int) ([]*QueryVolume, error)
}

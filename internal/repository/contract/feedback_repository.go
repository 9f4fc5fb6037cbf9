package contract

import (
	"context"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/specification"
)

type FeedbackRepository interface {
	// Upsert writes feedback keyed on (query, user, result); a second write
	// for the same triple overwrites the first (last write wins).
	Upsert(ctx context.Context, feedback *entity.SearchFeedback) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SearchFeedback, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SearchFeedback, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

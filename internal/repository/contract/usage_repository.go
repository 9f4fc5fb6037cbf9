package contract

import (
	"context"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
)

type UsageRepository interface {
	// Record accumulates one provider call into the (day, operation) row.
	Record(ctx context.Context, usage *entity.AiUsage) error

	// Range returns daily usage rows between from and to inclusive.
	Range(ctx context.Context, from, to time.Time) ([]*entity.AiUsage, error)
}

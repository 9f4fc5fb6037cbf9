package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/repository/contract"
)

// TrendingQuery is a query ranked by recency-weighted popularity.
type TrendingQuery struct {
	QueryText    string    `json:"queryText"`
	Count        int64     `json:"count"`
	Score        float64   `json:"score"`
	LastSearched time.Time `json:"lastSearched"`
}

// Trending ranks queries by count·e^(−λ·ageDays), where age is measured from
// the query's most recent occurrence. With λ=0.1, a query searched 50 times
// today outranks one searched 100 times ten days ago.
type Trending struct {
	repo   contract.SearchQueryRepository
	lambda float64
	now    func() time.Time
}

func NewTrending(repo contract.SearchQueryRepository, lambda float64) *Trending {
	return &Trending{
		repo:   repo,
		lambda: lambda,
		now:    time.Now,
	}
}

func (t *Trending) Top(ctx context.Context, window time.Duration, limit int) ([]*TrendingQuery, error) {
	since := t.now().Add(-window)

	// Over-fetch so decay reordering below the cut still surfaces fresh
	// queries that raw counts would bury.
	volumes, err := t.repo.VolumesSince(ctx, since, limit*4)
	if err != nil {
		return nil, err
	}

	trending := make([]*TrendingQuery, len(volumes))
	for i, v := range volumes {
		ageDays := t.now().Sub(v.LastSearched).Hours() / 24
		if ageDays < 0 {
			ageDays = 0
		}
		trending[i] = &TrendingQuery{
			QueryText:    v.QueryText,
			Count:        v.Count,
			Score:        float64(v.Count) * math.Exp(-t.lambda*ageDays),
			LastSearched: v.LastSearched,
		}
	}

	sort.SliceStable(trending, func(i, j int) bool {
		return trending[i].Score > trending[j].Score
	})

	if len(trending) > limit {
		trending = trending[:limit]
	}
	return trending, nil
}

package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/contract"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/specification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearchQueryRepo struct {
	volumes   []*contract.QueryVolume
	err       error
	gotSince  time.Time
	gotLimit  int
	callCount int
}

func (f *fakeSearchQueryRepo) Create(ctx context.Context, query *entity.SearchQuery) error {
	return nil
}

func (f *fakeSearchQueryRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SearchQuery, error) {
	return nil, nil
}

func (f *fakeSearchQueryRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SearchQuery, error) {
	return nil, nil
}

func (f *fakeSearchQueryRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

func (f *fakeSearchQueryRepo) VolumesSince(ctx context.Context, since time.Time, limit int) ([]*contract.QueryVolume, error) {
	f.callCount++
	f.gotSince = since
	f.gotLimit = limit
	return f.volumes, f.err
}

func TestTrendingDecayOutweighsRawCount(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	repo := &fakeSearchQueryRepo{
		volumes: []*contract.QueryVolume{
			{QueryText: "pallet wrapping", Count: 100, LastSearched: now.Add(-10 * 24 * time.Hour)},
			{QueryText: "forklift charging", Count: 50, LastSearched: now},
		},
	}

	trending := NewTrending(repo, 0.1)
	trending.now = func() time.Time { return now }

	top, err := trending.Top(context.Background(), 7*24*time.Hour, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)

	// 50·e^0 = 50 beats 100·e^(−1) ≈ 36.8.
	assert.Equal(t, "forklift charging", top[0].QueryText)
	assert.InDelta(t, 50.0, top[0].Score, 1e-9)
	assert.Equal(t, "pallet wrapping", top[1].QueryText)
	assert.InDelta(t, 36.78, top[1].Score, 0.01)
}

func TestTrendingOverFetchAndTruncate(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	volumes := make([]*contract.QueryVolume, 8)
	for i := range volumes {
		volumes[i] = &contract.QueryVolume{
			QueryText:    "query",
			Count:        int64(i + 1),
			LastSearched: now,
		}
	}
	repo := &fakeSearchQueryRepo{volumes: volumes}

	trending := NewTrending(repo, 0.1)
	trending.now = func() time.Time { return now }

	top, err := trending.Top(context.Background(), 24*time.Hour, 2)
	require.NoError(t, err)

	assert.Equal(t, 8, repo.gotLimit) // limit*4
	assert.Equal(t, now.Add(-24*time.Hour), repo.gotSince)
	assert.Len(t, top, 2)
	assert.Equal(t, int64(8), top[0].Count)
}

func TestTrendingFutureTimestampClamped(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	repo := &fakeSearchQueryRepo{
		volumes: []*contract.QueryVolume{
			// Clock skew can land a row slightly in the future.
			{QueryText: "dock scheduling", Count: 10, LastSearched: now.Add(2 * time.Minute)},
		},
	}

	trending := NewTrending(repo, 0.1)
	trending.now = func() time.Time { return now }

	top, err := trending.Top(context.Background(), 24*time.Hour, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.InDelta(t, 10.0, top[0].Score, 1e-9)
}

func TestTrendingRepositoryError(t *testing.T) {
	repo := &fakeSearchQueryRepo{err: errors.New("connection refused")}
	trending := NewTrending(repo, 0.1)

	top, err := trending.Top(context.Background(), 24*time.Hour, 5)
	assert.Error(t, err)
	assert.Nil(t, top)
}

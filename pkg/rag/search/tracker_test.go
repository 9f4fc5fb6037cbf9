package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerSupersedesPreviousSearch(t *testing.T) {
	tracker := NewInflightTracker()

	first, releaseFirst := tracker.Begin(context.Background(), "client-a")
	defer releaseFirst()

	second, releaseSecond := tracker.Begin(context.Background(), "client-a")
	defer releaseSecond()

	// The newer search cancels the older one, and only the older one.
	assert.ErrorIs(t, first.Err(), context.Canceled)
	assert.NoError(t, second.Err())
}

func TestTrackerIsolatesClients(t *testing.T) {
	tracker := NewInflightTracker()

	a, releaseA := tracker.Begin(context.Background(), "client-a")
	defer releaseA()
	b, releaseB := tracker.Begin(context.Background(), "client-b")
	defer releaseB()

	assert.NoError(t, a.Err())
	assert.NoError(t, b.Err())
}

func TestTrackerStaleReleaseKeepsNewerEntry(t *testing.T) {
	tracker := NewInflightTracker()

	_, releaseFirst := tracker.Begin(context.Background(), "client-a")
	second, releaseSecond := tracker.Begin(context.Background(), "client-a")
	defer releaseSecond()

	// The superseded search finishing late must not evict the live entry.
	releaseFirst()
	assert.NoError(t, second.Err())

	// A third search still supersedes the second through the tracker.
	third, releaseThird := tracker.Begin(context.Background(), "client-a")
	defer releaseThird()
	assert.ErrorIs(t, second.Err(), context.Canceled)
	assert.NoError(t, third.Err())
}

func TestTrackerEmptyKeyDisablesSupersession(t *testing.T) {
	tracker := NewInflightTracker()

	first, releaseFirst := tracker.Begin(context.Background(), "")
	defer releaseFirst()
	second, releaseSecond := tracker.Begin(context.Background(), "")
	defer releaseSecond()

	assert.NoError(t, first.Err())
	assert.NoError(t, second.Err())
}

func TestTrackerReleaseCancelsOwnContext(t *testing.T) {
	tracker := NewInflightTracker()

	ctx, release := tracker.Begin(context.Background(), "client-a")
	release()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

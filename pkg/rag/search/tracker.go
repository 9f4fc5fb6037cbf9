package search

import (
	"context"
	"sync"
)

type inflight struct {
	cancel context.CancelFunc
}

// InflightTracker cancels a client's previous in-flight search when a new one
// arrives, so stale result sets never race fresh ones back to the UI.
type InflightTracker struct {
	mu     sync.Mutex
	active map[string]*inflight
}

func NewInflightTracker() *InflightTracker {
	return &InflightTracker{
		active: make(map[string]*inflight),
	}
}

// Begin registers a new search for the client key and cancels the previous
// one. The returned release must be called when the search finishes.
func (t *InflightTracker) Begin(ctx context.Context, clientKey string) (context.Context, func()) {
	if clientKey == "" {
		return ctx, func() {}
	}

	searchCtx, cancel := context.WithCancel(ctx)
	entry := &inflight{cancel: cancel}

	t.mu.Lock()
	if prev, ok := t.active[clientKey]; ok {
		prev.cancel()
	}
	t.active[clientKey] = entry
	t.mu.Unlock()

	return searchCtx, func() {
		t.mu.Lock()
		// Only clear the slot if it is still ours; a newer search may have
		// replaced it already.
		if current, ok := t.active[clientKey]; ok && current == entry {
			delete(t.active, clientKey)
		}
		t.mu.Unlock()
		cancel()
	}
}

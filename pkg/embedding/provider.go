package embedding

import (
	"context"
	"errors"
)

// ErrProvider wraps every upstream embedding failure so callers can map the
// whole class to one degraded-mode branch without inspecting provider
// internals.
var ErrProvider = errors.New("embedding provider error")

// Provider defines the contract for any embedding backend.
type Provider interface {
	// Embed returns one vector for one input text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, index-aligned. A nil slot
	// means that input failed after retries; the rest of the batch is
	// still usable.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	Dimensions() int
	Model() string
}

// UsageSink receives per-call token accounting. Implementations must be safe
// for concurrent use.
type UsageSink interface {
	RecordEmbedding(ctx context.Context, requests, promptTokens int64)
	RecordCompletion(ctx context.Context, requests, promptTokens, completionTokens int64)
}

// NopUsageSink discards accounting, for tests and tools.
type NopUsageSink struct{}

func (NopUsageSink) RecordEmbedding(ctx context.Context, requests, promptTokens int64) {}
func (NopUsageSink) RecordCompletion(ctx context.Context, requests, promptTokens, completionTokens int64) {
}

package llm

import (
	"context"
	"errors"
)

// ErrProvider wraps every upstream completion failure, mirroring the
// embedding side, so callers branch on the class rather than the vendor
// error.
var ErrProvider = errors.New("llm provider error")

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Completion is a full model response plus its token accounting.
type Completion struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// Stream yields completion fragments in order. Recv returns io.EOF when the
// model is done; Close releases the underlying connection and is safe to call
// twice. Usage reports the token counts of the completed stream; both counts
// are zero until Recv has returned io.EOF.
type Stream interface {
	Recv() (string, error)
	Close() error
	Usage() (promptTokens, completionTokens int)
}

// Provider defines the contract for any LLM backend
type Provider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (*Completion, error)

	// ChatStream opens a streaming completion for the history.
	ChatStream(ctx context.Context, history []Message, options ...Option) (Stream, error)

	// Moderate reports whether the input trips the provider's content
	// policy. Providers without a moderation endpoint return false, nil.
	Moderate(ctx context.Context, input string) (bool, error)
}

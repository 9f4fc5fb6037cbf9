package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mustafa-mbari/aiwmsa/pkg/embedding"
	"github.com/mustafa-mbari/aiwmsa/pkg/llm"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIProvider struct {
	client         *openai.Client
	model          string
	requestTimeout time.Duration
	maxRetries     int
	usage          embedding.UsageSink
}

var _ llm.Provider = &OpenAIProvider{}

func NewOpenAIProvider(apiKey, model, baseURL string, requestTimeout time.Duration, maxRetries int, usage embedding.UsageSink) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if usage == nil {
		usage = embedding.NopUsageSink{}
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIProvider{
		client:         openai.NewClientWithConfig(cfg),
		model:          model,
		requestTimeout: requestTimeout,
		maxRetries:     maxRetries,
		usage:          usage,
	}
}

func (p *OpenAIProvider) buildRequest(history []llm.Message, opts ...llm.Option) openai.ChatCompletionRequest {
	options := &llm.Options{
		Temperature: 0.7,
	}
	for _, opt := range opts {
		opt(options)
	}

	messages := make([]openai.ChatCompletionMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = openai.ChatMessageRoleAssistant
		}
		messages[i] = openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		}
	}

	model := p.model
	if options.Model != "" {
		model = options.Model
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: float32(options.Temperature),
	}
	if options.MaxTokens > 0 {
		req.MaxTokens = options.MaxTokens
	}
	return req
}

func (p *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (*llm.Completion, error) {
	req := p.buildRequest(history, opts...)

	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", llm.ErrProvider, ctx.Err())
			case <-time.After(backoff):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
		resp, err := p.client.CreateChatCompletion(callCtx, req)
		cancel()
		if err == nil {
			if len(resp.Choices) == 0 {
				return nil, fmt.Errorf("%w: empty response", llm.ErrProvider)
			}
			p.usage.RecordCompletion(ctx, 1, int64(resp.Usage.PromptTokens), int64(resp.Usage.CompletionTokens))
			return &llm.Completion{
				Content:          resp.Choices[0].Message.Content,
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
			}, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", llm.ErrProvider, ctx.Err())
		}
	}
	return nil, fmt.Errorf("%w: %v", llm.ErrProvider, lastErr)
}

// chatCompletionStream is the slice of *openai.ChatCompletionStream the
// wrapper needs.
type chatCompletionStream interface {
	Recv() (openai.ChatCompletionStreamResponse, error)
	Close() error
}

// openaiStream captures the terminal usage chunk the API sends when
// StreamOptions.IncludeUsage is set, and records the call exactly once: with
// real token counts after a complete stream, with zeros when the client
// abandons it early.
type openaiStream struct {
	inner            chatCompletionStream
	ctx              context.Context
	usage            embedding.UsageSink
	promptTokens     int
	completionTokens int
	recorded         bool
}

func (s *openaiStream) Recv() (string, error) {
	resp, err := s.inner.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.record()
			return "", io.EOF
		}
		return "", fmt.Errorf("%w: %v", llm.ErrProvider, err)
	}
	if resp.Usage != nil {
		s.promptTokens = resp.Usage.PromptTokens
		s.completionTokens = resp.Usage.CompletionTokens
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Delta.Content, nil
}

func (s *openaiStream) Close() error {
	s.record()
	return s.inner.Close()
}

func (s *openaiStream) Usage() (int, int) {
	return s.promptTokens, s.completionTokens
}

func (s *openaiStream) record() {
	if s.recorded {
		return
	}
	s.recorded = true
	s.usage.RecordCompletion(s.ctx, 1, int64(s.promptTokens), int64(s.completionTokens))
}

// ChatStream does not retry: a broken stream mid-answer cannot be resumed
// transparently, so the caller decides whether to restart.
func (p *OpenAIProvider) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (llm.Stream, error) {
	req := p.buildRequest(history, opts...)
	req.Stream = true
	req.StreamOptions = &openai.StreamOptions{IncludeUsage: true}

	stream, err := p.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrProvider, err)
	}
	return &openaiStream{inner: stream, ctx: ctx, usage: p.usage}, nil
}

func (p *OpenAIProvider) Moderate(ctx context.Context, input string) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	resp, err := p.client.Moderations(callCtx, openai.ModerationRequest{
		Model: openai.ModerationTextStable,
		Input: input,
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", llm.ErrProvider, err)
	}
	for _, result := range resp.Results {
		if result.Flagged {
			return true, nil
		}
	}
	return false, nil
}

package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mustafa-mbari/aiwmsa/pkg/utils"

	openai "github.com/sashabaranov/go-openai"
)

var embeddingDimensions = map[string]int{
	"text-embedding-3-large": 3072,
	"text-embedding-3-small": 1536,
	"text-embedding-ada-002": 1536,
}

type OpenAIProvider struct {
	client         *openai.Client
	model          string
	dimensions     int
	maxInputChars  int
	maxRetries     int
	requestTimeout time.Duration
	batchSize      int
	batchDelay     time.Duration
	usage          UsageSink
}

func NewOpenAIProvider(apiKey, model, baseURL string, maxInputChars, maxRetries, batchSize int, requestTimeout, batchDelay time.Duration, usage UsageSink) Provider {
	if model == "" {
		model = "text-embedding-3-small"
	}
	dims, ok := embeddingDimensions[model]
	if !ok {
		dims = 1536
	}
	if usage == nil {
		usage = NopUsageSink{}
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIProvider{
		client:         openai.NewClientWithConfig(cfg),
		model:          model,
		dimensions:     dims,
		maxInputChars:  maxInputChars,
		maxRetries:     maxRetries,
		requestTimeout: requestTimeout,
		batchSize:      batchSize,
		batchDelay:     batchDelay,
		usage:          usage,
	}
}

func (p *OpenAIProvider) Dimensions() int {
	return p.dimensions
}

func (p *OpenAIProvider) Model() string {
	return p.model
}

// prepare truncates over-length input deterministically so the same text
// always yields the same provider payload.
func (p *OpenAIProvider) prepare(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty input", ErrProvider)
	}
	if p.maxInputChars > 0 {
		text = utils.TruncateRunes(text, p.maxInputChars)
	}
	return text, nil
}

func (p *OpenAIProvider) createEmbeddings(ctx context.Context, inputs []string) (*openai.EmbeddingResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrProvider, ctx.Err())
			case <-time.After(backoff):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
		resp, err := p.client.CreateEmbeddings(callCtx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(p.model),
			Input: inputs,
		})
		cancel()
		if err == nil {
			p.usage.RecordEmbedding(ctx, 1, int64(resp.Usage.PromptTokens))
			return &resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrProvider, ctx.Err())
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrProvider, lastErr)
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	input, err := p.prepare(text)
	if err != nil {
		return nil, err
	}

	resp, err := p.createEmbeddings(ctx, []string{input})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrProvider)
	}

	vector := make([]float32, len(resp.Data[0].Embedding))
	copy(vector, resp.Data[0].Embedding)
	return vector, nil
}

// EmbedBatch partitions inputs into provider-sized sub-batches with a small
// delay between them. A failed sub-batch falls back to per-item calls so one
// bad input cannot sink its neighbours.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	if len(texts) == 0 {
		return results, nil
	}

	batchSize := p.batchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	for start := 0; start < len(texts); start += batchSize {
		if start > 0 && p.batchDelay > 0 {
			select {
			case <-ctx.Done():
				return results, fmt.Errorf("%w: %v", ErrProvider, ctx.Err())
			case <-time.After(p.batchDelay):
			}
		}

		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		inputs := make([]string, 0, end-start)
		positions := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			input, err := p.prepare(texts[i])
			if err != nil {
				continue // empty input keeps its nil slot
			}
			inputs = append(inputs, input)
			positions = append(positions, i)
		}
		if len(inputs) == 0 {
			continue
		}

		resp, err := p.createEmbeddings(ctx, inputs)
		if err != nil {
			if ctx.Err() != nil {
				return results, err
			}
			p.embedIndividually(ctx, texts, positions, results)
			continue
		}

		for j, item := range resp.Data {
			if j >= len(positions) {
				break
			}
			vector := make([]float32, len(item.Embedding))
			copy(vector, item.Embedding)
			results[positions[j]] = vector
		}
	}

	return results, nil
}

func (p *OpenAIProvider) embedIndividually(ctx context.Context, texts []string, positions []int, results [][]float32) {
	for _, i := range positions {
		vector, err := p.Embed(ctx, texts[i])
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		results[i] = vector
	}
}

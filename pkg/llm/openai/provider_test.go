package openai

import (
	"context"
	"io"
	"sync"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu               sync.Mutex
	completionCalls  int
	promptTokens     int64
	completionTokens int64
}

func (s *recordingSink) RecordEmbedding(ctx context.Context, requests, promptTokens int64) {}

func (s *recordingSink) RecordCompletion(ctx context.Context, requests, promptTokens, completionTokens int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completionCalls++
	s.promptTokens += promptTokens
	s.completionTokens += completionTokens
}

type scriptedChatStream struct {
	responses []openai.ChatCompletionStreamResponse
	closed    bool
}

func (s *scriptedChatStream) Recv() (openai.ChatCompletionStreamResponse, error) {
	if len(s.responses) == 0 {
		return openai.ChatCompletionStreamResponse{}, io.EOF
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func (s *scriptedChatStream) Close() error {
	s.closed = true
	return nil
}

func delta(content string) openai.ChatCompletionStreamResponse {
	return openai.ChatCompletionStreamResponse{
		Choices: []openai.ChatCompletionStreamChoice{
			{Delta: openai.ChatCompletionStreamChoiceDelta{Content: content}},
		},
	}
}

func usageChunk(prompt, completion int) openai.ChatCompletionStreamResponse {
	return openai.ChatCompletionStreamResponse{
		Usage: &openai.Usage{
			PromptTokens:     prompt,
			CompletionTokens: completion,
			TotalTokens:      prompt + completion,
		},
	}
}

func TestStreamRecordsUsageFromTerminalChunk(t *testing.T) {
	sink := &recordingSink{}
	s := &openaiStream{
		inner: &scriptedChatStream{responses: []openai.ChatCompletionStreamResponse{
			delta("Charge "),
			delta("in bay 4."),
			usageChunk(120, 30),
		}},
		ctx:   context.Background(),
		usage: sink,
	}

	var full string
	for {
		fragment, err := s.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		full += fragment
	}

	assert.Equal(t, "Charge in bay 4.", full)

	prompt, completion := s.Usage()
	assert.Equal(t, 120, prompt)
	assert.Equal(t, 30, completion)

	assert.Equal(t, 1, sink.completionCalls)
	assert.Equal(t, int64(120), sink.promptTokens)
	assert.Equal(t, int64(30), sink.completionTokens)

	// Close after EOF must not double-record.
	require.NoError(t, s.Close())
	assert.Equal(t, 1, sink.completionCalls)
}

func TestStreamAbandonedEarlyRecordsOnce(t *testing.T) {
	sink := &recordingSink{}
	inner := &scriptedChatStream{responses: []openai.ChatCompletionStreamResponse{
		delta("Charge "),
		delta("in bay 4."),
		usageChunk(120, 30),
	}}
	s := &openaiStream{inner: inner, ctx: context.Background(), usage: sink}

	_, err := s.Recv()
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// The usage chunk never arrived; the call is still accounted for.
	assert.True(t, inner.closed)
	assert.Equal(t, 1, sink.completionCalls)
	assert.Equal(t, int64(0), sink.promptTokens)
}

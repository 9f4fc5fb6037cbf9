package answer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/pkg/llm"
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/rerank"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedStream struct {
	fragments        []string
	pos              int
	promptTokens     int
	completionTokens int
}

func (s *scriptedStream) Recv() (string, error) {
	if s.pos >= len(s.fragments) {
		return "", io.EOF
	}
	fragment := s.fragments[s.pos]
	s.pos++
	return fragment, nil
}

func (s *scriptedStream) Close() error { return nil }

func (s *scriptedStream) Usage() (int, int) { return s.promptTokens, s.completionTokens }

type fakeLLM struct {
	completion  *llm.Completion
	chatErr     error
	stream      llm.Stream
	gotMessages []llm.Message
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Completion, error) {
	f.gotMessages = history
	return f.completion, f.chatErr
}

func (f *fakeLLM) ChatStream(ctx context.Context, history []llm.Message, options ...llm.Option) (llm.Stream, error) {
	f.gotMessages = history
	return f.stream, f.chatErr
}

func (f *fakeLLM) Moderate(ctx context.Context, input string) (bool, error) {
	return false, nil
}

func answerHit(title, content string, similarity float64) rerank.Result {
	return rerank.Result{
		Scored: &entity.ScoredChunk{
			Chunk: &entity.DocumentChunk{
				Id:         uuid.New(),
				DocumentId: uuid.New(),
				Content:    content,
			},
			Similarity:    similarity,
			DocumentTitle: title,
		},
	}
}

func TestSynthesizeEmptyContextReturnsNil(t *testing.T) {
	provider := &fakeLLM{}
	s := NewSynthesizer(provider, 1.2, 5)

	got, err := s.Synthesize(context.Background(), "forklift rules", nil, nil, Options{})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Nil(t, provider.gotMessages) // the model is never consulted
}

func TestSynthesizeConfidenceFromSimilarity(t *testing.T) {
	provider := &fakeLLM{
		completion: &llm.Completion{Content: "Charge in the designated bay [Source 1].", PromptTokens: 120, CompletionTokens: 18},
	}
	s := NewSynthesizer(provider, 1.2, 5)

	hits := []rerank.Result{
		answerHit("Charging SOP", "charging bay rules", 0.8),
		answerHit("Battery Care", "battery maintenance", 0.6),
	}

	got, err := s.Synthesize(context.Background(), "where do I charge the forklift", hits, nil, Options{})
	require.NoError(t, err)
	require.NotNil(t, got)

	// mean(0.8, 0.6) * 1.2 = 0.84
	assert.InDelta(t, 0.84, got.Confidence, 1e-9)
	assert.Equal(t, "Charge in the designated bay [Source 1].", got.Text)
	assert.Equal(t, 120, got.PromptTokens)
	assert.Equal(t, 18, got.CompletionTokens)

	require.Len(t, got.Sources, 2)
	assert.Equal(t, "Charging SOP", got.Sources[0].Title)
	assert.Equal(t, 0.8, got.Sources[0].Similarity)
}

func TestSynthesizeConfidenceClamped(t *testing.T) {
	provider := &fakeLLM{completion: &llm.Completion{Content: "ok"}}
	s := NewSynthesizer(provider, 1.2, 5)

	got, err := s.Synthesize(context.Background(), "q?", []rerank.Result{
		answerHit("Docs", "text", 0.95),
	}, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Confidence)
}

func TestSynthesizeCapsSources(t *testing.T) {
	provider := &fakeLLM{completion: &llm.Completion{Content: "ok"}}
	s := NewSynthesizer(provider, 1.0, 2)

	hits := []rerank.Result{
		answerHit("A", "first", 0.9),
		answerHit("B", "second", 0.8),
		answerHit("C", "third", 0.7),
	}

	got, err := s.Synthesize(context.Background(), "q?", hits, nil, Options{})
	require.NoError(t, err)
	require.Len(t, got.Sources, 2)

	// Confidence only covers the sources actually sent to the model.
	assert.InDelta(t, 0.85, got.Confidence, 1e-9)

	// The prompt must not leak the dropped source.
	prompt := provider.gotMessages[len(provider.gotMessages)-1].Content
	assert.Contains(t, prompt, "[Source 1: A]")
	assert.Contains(t, prompt, "[Source 2: B]")
	assert.NotContains(t, prompt, "third")
}

func TestSynthesizePropagatesProviderError(t *testing.T) {
	provider := &fakeLLM{chatErr: fmt.Errorf("%w: upstream 500", llm.ErrProvider)}
	s := NewSynthesizer(provider, 1.2, 5)

	got, err := s.Synthesize(context.Background(), "q?", []rerank.Result{answerHit("A", "x", 0.9)}, nil, Options{})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, llm.ErrProvider)
}

func TestSynthesizeIncludesHistory(t *testing.T) {
	provider := &fakeLLM{completion: &llm.Completion{Content: "ok"}}
	s := NewSynthesizer(provider, 1.0, 5)

	history := []llm.Message{
		{Role: "user", Content: "how do I charge the reach truck"},
		{Role: "assistant", Content: "Use bay 4."},
	}

	_, err := s.Synthesize(context.Background(), "and overnight?", []rerank.Result{answerHit("A", "x", 0.9)}, history, Options{})
	require.NoError(t, err)

	require.Len(t, provider.gotMessages, 3)
	assert.Equal(t, history[0], provider.gotMessages[0])
	assert.Equal(t, "user", provider.gotMessages[2].Role)
	assert.Contains(t, provider.gotMessages[2].Content, "and overnight?")
}

func TestSynthesizeStream(t *testing.T) {
	provider := &fakeLLM{stream: &scriptedStream{fragments: []string{"Charge ", "in bay 4."}}}
	s := NewSynthesizer(provider, 1.0, 5)

	stream, skeleton, err := s.SynthesizeStream(context.Background(), "q?", []rerank.Result{answerHit("A", "x", 0.8)}, nil, Options{})
	require.NoError(t, err)
	require.NotNil(t, stream)
	require.NotNil(t, skeleton)

	// Confidence and sources are known before the first token.
	assert.InDelta(t, 0.8, skeleton.Confidence, 1e-9)
	assert.Len(t, skeleton.Sources, 1)
	assert.Empty(t, skeleton.Text)

	var text string
	for {
		fragment, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		text += fragment
	}
	assert.Equal(t, "Charge in bay 4.", text)
}

func TestSynthesizeStreamEmptyContext(t *testing.T) {
	s := NewSynthesizer(&fakeLLM{}, 1.0, 5)
	stream, skeleton, err := s.SynthesizeStream(context.Background(), "q?", nil, nil, Options{})
	require.NoError(t, err)
	assert.Nil(t, stream)
	assert.Nil(t, skeleton)
}

func TestPromptBuilderLayout(t *testing.T) {
	hits := []rerank.Result{
		answerHit("Forklift Manual", "pre-shift inspection steps", 0.9),
		answerHit("Safety Policy", "hi-vis vests are mandatory", 0.8),
	}

	prompt := NewPromptBuilder("what do I check before a shift?", hits).Build()

	assert.Contains(t, prompt, "[Source 1: Forklift Manual]")
	assert.Contains(t, prompt, "[Source 2: Safety Policy]")
	assert.Contains(t, prompt, "pre-shift inspection steps")
	assert.Contains(t, prompt, "<question>\nwhat do I check before a shift?")

	// Source material must come before the task framing.
	assert.Less(t, strings.Index(prompt, "[Source 1:"), strings.Index(prompt, "<task>"))
}

func TestPromptBuilderAnswerTypes(t *testing.T) {
	hits := []rerank.Result{answerHit("Docs", "text", 0.9)}

	tests := []struct {
		kind AnswerType
		want string
	}{
		{TypeQA, "Answer the question"},
		{TypeSummary, "Summarize"},
		{TypeExplanation, "Explain"},
		{TypeTroubleshooting, "Diagnose"},
		{TypeSafety, "focus on safety"},
		{AnswerType("bogus"), "Answer the question"}, // unknown falls back to qa
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			prompt := NewPromptBuilder("q?", hits).WithType(tt.kind).Build()
			assert.Contains(t, prompt, tt.want)
		})
	}
}

func TestPromptBuilderLanguage(t *testing.T) {
	hits := []rerank.Result{answerHit("Docs", "text", 0.9)}

	pinned := NewPromptBuilder("q?", hits).WithLanguage("de").Build()
	assert.Contains(t, pinned, `ISO code "de"`)

	free := NewPromptBuilder("q?", hits).Build()
	assert.Contains(t, free, "same language as the question")
}

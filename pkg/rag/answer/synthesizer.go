package answer

import (
	"context"

	"github.com/mustafa-mbari/aiwmsa/pkg/llm"
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/rerank"

	"github.com/google/uuid"
)

// Source identifies where an answer statement came from.
type Source struct {
	DocumentId uuid.UUID `json:"documentId"`
	ChunkId    uuid.UUID `json:"chunkId"`
	Title      string    `json:"title"`
	Similarity float64   `json:"similarity"`
}

// Answer is a synthesized reply with provenance. Confidence derives purely
// from retrieval similarity, not from the model's own judgement.
type Answer struct {
	Text             string   `json:"text"`
	Confidence       float64  `json:"confidence"`
	Sources          []Source `json:"sources"`
	PromptTokens     int      `json:"-"`
	CompletionTokens int      `json:"-"`
}

// Synthesizer turns retrieval context into grounded answers.
type Synthesizer struct {
	provider        llm.Provider
	confidenceScale float64
	maxSources      int
}

func NewSynthesizer(provider llm.Provider, confidenceScale float64, maxSources int) *Synthesizer {
	if maxSources <= 0 {
		maxSources = 5
	}
	return &Synthesizer{
		provider:        provider,
		confidenceScale: confidenceScale,
		maxSources:      maxSources,
	}
}

func (s *Synthesizer) prepare(query string, hits []rerank.Result) ([]rerank.Result, []Source, float64) {
	if len(hits) > s.maxSources {
		hits = hits[:s.maxSources]
	}

	sources := make([]Source, len(hits))
	var similaritySum float64
	for i, hit := range hits {
		sources[i] = Source{
			DocumentId: hit.Scored.Chunk.DocumentId,
			ChunkId:    hit.Scored.Chunk.Id,
			Title:      hit.Scored.DocumentTitle,
			Similarity: hit.Scored.Similarity,
		}
		similaritySum += hit.Scored.Similarity
	}

	confidence := 0.0
	if len(hits) > 0 {
		confidence = similaritySum / float64(len(hits)) * s.confidenceScale
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < 0 {
		confidence = 0
	}

	return hits, sources, confidence
}

// Options shape the prompt without touching retrieval.
type Options struct {
	Type     AnswerType // zero value means qa
	Language string     // ISO code; empty follows the question
}

func (s *Synthesizer) buildPrompt(query string, hits []rerank.Result, opts Options) string {
	return NewPromptBuilder(query, hits).
		WithType(opts.Type).
		WithLanguage(opts.Language).
		Build()
}

// Synthesize returns nil when there is no usable context: an honest "nothing
// found" beats a hallucinated answer.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, hits []rerank.Result, history []llm.Message, opts Options) (*Answer, error) {
	hits, sources, confidence := s.prepare(query, hits)
	if len(hits) == 0 {
		return nil, nil
	}

	prompt := s.buildPrompt(query, hits, opts)
	completion, err := s.provider.Chat(ctx, BuildMessages(prompt, history))
	if err != nil {
		return nil, err
	}

	return &Answer{
		Text:             completion.Content,
		Confidence:       confidence,
		Sources:          sources,
		PromptTokens:     completion.PromptTokens,
		CompletionTokens: completion.CompletionTokens,
	}, nil
}

// SynthesizeStream opens a fragment stream plus the answer skeleton
// (confidence and sources are known before the first token arrives). A nil
// stream with nil error means no usable context.
func (s *Synthesizer) SynthesizeStream(ctx context.Context, query string, hits []rerank.Result, history []llm.Message, opts Options) (llm.Stream, *Answer, error) {
	hits, sources, confidence := s.prepare(query, hits)
	if len(hits) == 0 {
		return nil, nil, nil
	}

	prompt := s.buildPrompt(query, hits, opts)
	stream, err := s.provider.ChatStream(ctx, BuildMessages(prompt, history))
	if err != nil {
		return nil, nil, err
	}

	return stream, &Answer{
		Confidence: confidence,
		Sources:    sources,
	}, nil
}

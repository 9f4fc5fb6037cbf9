package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mustafa-mbari/aiwmsa/internal/dto"
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/search"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePipeline struct {
	response *search.Response
	err      error
	calls    int
}

func (f *fakePipeline) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakePipeline) LoadMore(ctx context.Context, req search.Request) (*search.Response, error) {
	return f.Search(ctx, req)
}

type fakeAnswerService struct {
	payload *dto.AnswerPayload
	err     error

	answerCalls  int
	composeCalls int
	gotQuery     string
	gotResults   []search.Result
}

func (f *fakeAnswerService) Answer(ctx context.Context, userId *uuid.UUID, req *dto.AnswerRequest) (*dto.AnswerResponse, error) {
	f.answerCalls++
	return nil, errors.New("unexpected full answer pipeline call")
}

func (f *fakeAnswerService) AnswerStream(ctx context.Context, userId *uuid.UUID, req *dto.AnswerRequest, onFragment func(string) error) (*dto.AnswerResponse, error) {
	f.answerCalls++
	return nil, errors.New("unexpected full answer pipeline call")
}

func (f *fakeAnswerService) Compose(ctx context.Context, query string, results []search.Result, language string) (*dto.AnswerPayload, error) {
	f.composeCalls++
	f.gotQuery = query
	f.gotResults = results
	return f.payload, f.err
}

func searchPage(n int) *search.Response {
	results := make([]search.Result, n)
	for i := range results {
		results[i] = search.Result{
			ChunkId:    uuid.New(),
			DocumentId: uuid.New(),
			Content:    "charge in bay 4",
			Similarity: 0.9,
		}
	}
	return &search.Response{QueryId: uuid.New(), Results: results, TotalCount: int64(n)}
}

func TestSearchIncludeAnswerReusesRetrievedResults(t *testing.T) {
	answers := &fakeAnswerService{payload: &dto.AnswerPayload{Text: "Charge in bay 4.", Confidence: 0.9}}
	svc := NewSearchService(&fakePipeline{response: searchPage(2)}, nil, answers, nil)

	out, err := svc.Search(context.Background(), nil, "client", &dto.SearchRequest{
		Query:         "where to charge the forklift",
		IncludeAnswer: true,
	})
	require.NoError(t, err)

	// Synthesis runs on the page this search produced, not through a second
	// retrieval pass with its own moderation, embedding, and conversation.
	assert.Equal(t, 1, answers.composeCalls)
	assert.Equal(t, 0, answers.answerCalls)
	assert.Equal(t, "where to charge the forklift", answers.gotQuery)
	assert.Len(t, answers.gotResults, 2)

	require.NotNil(t, out.Answer)
	assert.Equal(t, "Charge in bay 4.", out.Answer.Text)
	assert.False(t, out.AnswerDegraded)
}

func TestSearchIncludeAnswerDegradesOnSynthesisFailure(t *testing.T) {
	answers := &fakeAnswerService{err: errors.New("provider down")}
	svc := NewSearchService(&fakePipeline{response: searchPage(1)}, nil, answers, nil)

	out, err := svc.Search(context.Background(), nil, "client", &dto.SearchRequest{
		Query:         "where to charge the forklift",
		IncludeAnswer: true,
	})
	require.NoError(t, err)

	assert.Nil(t, out.Answer)
	assert.True(t, out.AnswerDegraded)
	assert.Len(t, out.Results, 1) // the search itself still succeeds
}

func TestSearchWithoutIncludeAnswerSkipsSynthesis(t *testing.T) {
	answers := &fakeAnswerService{}
	svc := NewSearchService(&fakePipeline{response: searchPage(1)}, nil, answers, nil)

	out, err := svc.Search(context.Background(), nil, "client", &dto.SearchRequest{Query: "forklift"})
	require.NoError(t, err)

	assert.Equal(t, 0, answers.composeCalls)
	assert.Nil(t, out.Answer)
	assert.False(t, out.AnswerDegraded)
}

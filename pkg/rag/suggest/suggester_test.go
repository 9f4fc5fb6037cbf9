package suggest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/rerank"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSuggestionRepo struct {
	related     []*entity.RelatedSearch
	relatedErr  error
	suggestions map[string]string // normalized -> display
	links       []*entity.RelatedSearch
	byPrefix    []*entity.SearchSuggestion
}

func newFakeSuggestionRepo() *fakeSuggestionRepo {
	return &fakeSuggestionRepo{suggestions: make(map[string]string)}
}

func (f *fakeSuggestionRepo) UpsertSuggestion(ctx context.Context, normalizedQuery, displayText string) error {
	f.suggestions[normalizedQuery] = displayText
	return nil
}

func (f *fakeSuggestionRepo) FindByPrefix(ctx context.Context, prefix string, limit int) ([]*entity.SearchSuggestion, error) {
	return f.byPrefix, nil
}

func (f *fakeSuggestionRepo) UpsertRelated(ctx context.Context, related *entity.RelatedSearch) error {
	f.links = append(f.links, related)
	return nil
}

func (f *fakeSuggestionRepo) FindRelated(ctx context.Context, normalizedQuery string, limit int) ([]*entity.RelatedSearch, error) {
	return f.related, f.relatedErr
}

func resultWithContent(content string) rerank.Result {
	return rerank.Result{
		Scored: &entity.ScoredChunk{
			Chunk: &entity.DocumentChunk{Content: content},
		},
	}
}

func TestSuggestRelatedFirst(t *testing.T) {
	repo := newFakeSuggestionRepo()
	repo.related = []*entity.RelatedSearch{
		{RelatedQuery: "forklift inspection"},
		{RelatedQuery: "forklift certification"},
	}
	s := NewSuggester(repo, 5)

	got := s.Suggest(context.Background(), "forklift safety", nil)
	assert.Equal(t, []string{"forklift inspection", "forklift certification"}, got)
}

func TestSuggestNeverEchoesQuery(t *testing.T) {
	repo := newFakeSuggestionRepo()
	repo.related = []*entity.RelatedSearch{
		{RelatedQuery: "Forklift  Safety"}, // normalizes to the query itself
		{RelatedQuery: "battery charging"},
	}
	s := NewSuggester(repo, 5)

	got := s.Suggest(context.Background(), "forklift safety", nil)
	assert.Equal(t, []string{"battery charging"}, got)
}

func TestSuggestKeyPhrasesRequireRepetition(t *testing.T) {
	repo := newFakeSuggestionRepo()
	s := NewSuggester(repo, 5)

	top := []rerank.Result{
		resultWithContent("battery charging requires ventilation. battery charging stations live on dock four."),
		resultWithContent("singleton mention only here"),
	}

	got := s.Suggest(context.Background(), "power equipment", top)
	// "battery charging" appears twice; nothing else does.
	assert.Contains(t, got, "battery charging")
	for _, g := range got {
		assert.NotContains(t, g, "singleton")
	}
}

func TestSuggestLimitAndRepoFailure(t *testing.T) {
	repo := newFakeSuggestionRepo()
	repo.relatedErr = errors.New("timeout")
	s := NewSuggester(repo, 2)

	content := strings.Repeat("battery charging dock scheduling ", 3)
	top := []rerank.Result{resultWithContent(content), resultWithContent(content)}

	// Related lookup failing must not fail suggestions.
	got := s.Suggest(context.Background(), "anything", top)
	assert.LessOrEqual(t, len(got), 2)
}

func TestRecordLinksPreviousQuery(t *testing.T) {
	repo := newFakeSuggestionRepo()
	s := NewSuggester(repo, 5)

	err := s.Record(context.Background(), "Forklift Safety ", "pallet jack rules")
	require.NoError(t, err)

	assert.Equal(t, "Forklift Safety", repo.suggestions["forklift safety"])
	require.Len(t, repo.links, 1)
	assert.Equal(t, "pallet jack rules", repo.links[0].Query)
	assert.Equal(t, "forklift safety", repo.links[0].RelatedQuery)
	assert.Equal(t, entity.RelationRelated, repo.links[0].Relation)
}

func TestRecordSkipsSelfLinkAndEmpty(t *testing.T) {
	repo := newFakeSuggestionRepo()
	s := NewSuggester(repo, 5)

	require.NoError(t, s.Record(context.Background(), "   ", "previous"))
	assert.Empty(t, repo.suggestions)

	require.NoError(t, s.Record(context.Background(), "forklift", "FORKLIFT"))
	assert.Empty(t, repo.links)
}

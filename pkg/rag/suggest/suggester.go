package suggest

import (
	"context"
	"strings"

	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/contract"
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/rerank"
	"github.com/mustafa-mbari/aiwmsa/pkg/utils"
)

// Suggester produces follow-up query suggestions for a finished search. Two
// sources feed it: historically co-observed queries and key phrases lifted
// from the top results. Suggestion failures never fail the search.
type Suggester struct {
	repo  contract.SuggestionRepository
	limit int
}

func NewSuggester(repo contract.SuggestionRepository, limit int) *Suggester {
	if limit <= 0 {
		limit = 5
	}
	return &Suggester{
		repo:  repo,
		limit: limit,
	}
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "from": true, "are": true, "was": true, "were": true,
	"have": true, "has": true, "not": true, "you": true, "your": true,
	"all": true, "any": true, "can": true, "how": true, "what": true,
	"when": true, "where": true, "which": true, "will": true, "must": true,
	"should": true, "shall": true, "may": true, "into": true, "onto": true,
}

// Suggest returns up to the configured number of distinct suggestions,
// related-history first, never echoing the query itself.
func (s *Suggester) Suggest(ctx context.Context, query string, top []rerank.Result) []string {
	normalized := utils.NormalizeText(query)

	suggestions := make([]string, 0, s.limit)
	seen := map[string]bool{normalized: true}

	related, err := s.repo.FindRelated(ctx, normalized, s.limit)
	if err == nil {
		for _, r := range related {
			s.add(&suggestions, seen, r.RelatedQuery)
		}
	}

	if len(suggestions) < s.limit {
		for _, phrase := range keyPhrases(top, 3) {
			s.add(&suggestions, seen, phrase)
			if len(suggestions) == s.limit {
				break
			}
		}
	}

	return suggestions
}

func (s *Suggester) add(suggestions *[]string, seen map[string]bool, candidate string) {
	if len(*suggestions) >= s.limit {
		return
	}
	normalized := utils.NormalizeText(candidate)
	if normalized == "" || seen[normalized] {
		return
	}
	seen[normalized] = true
	*suggestions = append(*suggestions, candidate)
}

// Record persists the query into the suggestion tables so future searches
// can surface it, and links it to the previous query of the same session
// when one is known.
func (s *Suggester) Record(ctx context.Context, query, previousQuery string) error {
	normalized := utils.NormalizeText(query)
	if normalized == "" {
		return nil
	}

	if err := s.repo.UpsertSuggestion(ctx, normalized, strings.TrimSpace(query)); err != nil {
		return err
	}

	prev := utils.NormalizeText(previousQuery)
	if prev == "" || prev == normalized {
		return nil
	}
	return s.repo.UpsertRelated(ctx, &entity.RelatedSearch{
		Query:        prev,
		RelatedQuery: normalized,
		Relation:     entity.RelationRelated,
		Strength:     0.5,
	})
}

// Prefix serves typeahead from the observed-query table.
func (s *Suggester) Prefix(ctx context.Context, prefix string) ([]*entity.SearchSuggestion, error) {
	normalized := utils.NormalizeText(prefix)
	if normalized == "" {
		return nil, nil
	}
	return s.repo.FindByPrefix(ctx, normalized, s.limit)
}

// keyPhrases pulls frequent non-stopword bigrams from the top results.
func keyPhrases(top []rerank.Result, maxResults int) []string {
	counts := make(map[string]int)
	order := make([]string, 0, 16)

	for i, result := range top {
		if i == maxResults {
			break
		}
		words := strings.Fields(utils.NormalizeText(result.Scored.Chunk.Content))
		for j := 0; j+1 < len(words); j++ {
			a, b := words[j], words[j+1]
			if stopwords[a] || stopwords[b] || len(a) < 3 || len(b) < 3 {
				continue
			}
			phrase := a + " " + b
			if counts[phrase] == 0 {
				order = append(order, phrase)
			}
			counts[phrase]++
		}
	}

	phrases := make([]string, 0, len(order))
	for _, phrase := range order {
		if counts[phrase] >= 2 {
			phrases = append(phrases, phrase)
		}
	}
	return phrases
}

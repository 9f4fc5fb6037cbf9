package rerank

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/mustafa-mbari/aiwmsa/internal/config"
	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/pkg/logger"
	"github.com/mustafa-mbari/aiwmsa/pkg/utils"
)

// Result is one reranked hit. FinalScore is the vector similarity plus
// bounded heuristic bonuses, clamped to 1.0 so no amount of bonus stacking
// outranks a genuinely closer vector by more than the bonus budget.
type Result struct {
	Scored     *entity.ScoredChunk
	FinalScore float64
	Highlights []string
}

// Engine applies deterministic heuristic bonuses on top of vector
// similarity. Equal inputs always produce equal output order.
type Engine struct {
	termOverlapWeight float64
	recencyWeekBonus  float64
	recencyMonthBonus float64
	titleMatchBonus   float64
	now               func() time.Time
	log               logger.ILogger
}

func NewEngine(cfg config.SearchConfig, log logger.ILogger) *Engine {
	return &Engine{
		termOverlapWeight: cfg.TermOverlapWeight,
		recencyWeekBonus:  cfg.RecencyWeekBonus,
		recencyMonthBonus: cfg.RecencyMonthBonus,
		titleMatchBonus:   cfg.TitleMatchBonus,
		now:               time.Now,
		log:               log,
	}
}

const maxHighlights = 3

// queryTerms tokenizes the normalized query, keeping terms longer than two
// runes so stopword-sized noise never earns a bonus.
func queryTerms(query string) []string {
	fields := strings.Fields(utils.NormalizeText(query))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) > 2 {
			terms = append(terms, f)
		}
	}
	return terms
}

func (e *Engine) score(query string, terms []string, scored *entity.ScoredChunk) (float64, []string) {
	final := scored.Similarity

	content := strings.ToLower(scored.Chunk.Content)
	title := strings.ToLower(scored.DocumentTitle)

	// Term overlap: bonus scales with the fraction of query terms present.
	if len(terms) > 0 {
		matched := 0
		for _, term := range terms {
			if strings.Contains(content, term) {
				matched++
			}
		}
		final += e.termOverlapWeight * float64(matched) / float64(len(terms))
	}

	// Title bonus requires the whole query, not just a shared term.
	if normalized := utils.NormalizeText(query); normalized != "" && strings.Contains(title, normalized) {
		final += e.titleMatchBonus
	}

	// Recency: fresher documents get a small nudge, not a takeover.
	age := e.now().Sub(scored.DocumentUpdatedAt)
	switch {
	case age <= 7*24*time.Hour:
		final += e.recencyWeekBonus
	case age <= 30*24*time.Hour:
		final += e.recencyMonthBonus
	}

	if final > 1.0 {
		final = 1.0
	}
	return final, extractHighlights(scored.Chunk.Content, terms)
}

// Rerank scores and reorders hits. Sorting is stable and ties fall back to
// the incoming (similarity) order, so reranking never shuffles equals.
func (e *Engine) Rerank(query string, hits []*entity.ScoredChunk) []Result {
	terms := queryTerms(query)

	results := make([]Result, len(hits))
	for i, hit := range hits {
		results[i] = e.scoreResult(query, terms, hit)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
	return results
}

// scoreResult protects the pipeline from a single bad hit: if scoring or
// highlighting fails the hit keeps its raw similarity and loses only its
// highlights, and the search carries on.
func (e *Engine) scoreResult(query string, terms []string, hit *entity.ScoredChunk) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			if e.log != nil {
				e.log.Warn("rerank", "scoring failed, keeping raw similarity", map[string]interface{}{
					"chunk_id": hit.Chunk.Id,
					"panic":    fmt.Sprint(r),
				})
			}
			result = Result{Scored: hit, FinalScore: hit.Similarity}
		}
	}()

	final, highlights := e.score(query, terms, hit)
	return Result{Scored: hit, FinalScore: final, Highlights: highlights}
}

// extractHighlights keeps the sentences containing any query term, with the
// matched terms wrapped in ** markers, capped at maxHighlights per result.
func extractHighlights(content string, terms []string) []string {
	if len(terms) == 0 {
		return nil
	}

	var highlights []string
	for _, sentence := range splitSentences(content) {
		lower, _ := foldOffsets(sentence)

		matched := false
		for _, term := range terms {
			if strings.Contains(lower, term) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		highlights = append(highlights, emphasizeTerms(sentence, terms))
		if len(highlights) == maxHighlights {
			break
		}
	}
	return highlights
}

// splitSentences is a cheap terminator-based splitter. Abbreviations split
// wrongly sometimes; a short extra highlight is harmless.
func splitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// foldOffsets lowercases the sentence rune by rune and records, for every
// byte of the lowered form, the starting byte offset of the original rune it
// came from. Case mappings can change UTF-8 byte length, so offsets into the
// lowered string must never be used on the original directly.
func foldOffsets(sentence string) (string, []int) {
	var lowered strings.Builder
	lowered.Grow(len(sentence))
	offsets := make([]int, 0, len(sentence)+1)

	for i, r := range sentence {
		lr := unicode.ToLower(r)
		for n := utf8.RuneLen(lr); n > 0; n-- {
			offsets = append(offsets, i)
		}
		lowered.WriteRune(lr)
	}
	offsets = append(offsets, len(sentence))
	return lowered.String(), offsets
}

// emphasizeTerms wraps every case-insensitive term occurrence in **, keeping
// the original casing of the matched text. Matches are located in the folded
// sentence and mapped back to original rune boundaries.
func emphasizeTerms(sentence string, terms []string) string {
	for _, term := range terms {
		lowered, offsets := foldOffsets(sentence)

		var b strings.Builder
		written := 0  // bytes of sentence already emitted
		searched := 0 // bytes of lowered already scanned
		for {
			idx := strings.Index(lowered[searched:], term)
			if idx < 0 {
				b.WriteString(sentence[written:])
				break
			}
			start := offsets[searched+idx]
			end := offsets[searched+idx+len(term)]
			b.WriteString(sentence[written:start])
			b.WriteString("**")
			b.WriteString(sentence[start:end])
			b.WriteString("**")
			written = end
			searched += idx + len(term)
		}
		sentence = b.String()
	}
	return sentence
}

package answer

import (
	"fmt"
	"strings"

	"github.com/mustafa-mbari/aiwmsa/pkg/llm"
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/rerank"
)

// AnswerType selects the task framing of the synthesis prompt.
type AnswerType string

const (
	TypeQA              AnswerType = "qa"
	TypeSummary         AnswerType = "summary"
	TypeExplanation     AnswerType = "explanation"
	TypeTroubleshooting AnswerType = "troubleshooting"
	TypeSafety          AnswerType = "safety"
)

// taskInstructions per answer type; unknown types fall back to qa.
var taskInstructions = map[AnswerType]string{
	TypeQA:              "Answer the question using only the reference material above.",
	TypeSummary:         "Summarize what the reference material above says about the topic of the question.",
	TypeExplanation:     "Explain the topic of the question in plain language, using only the reference material above.",
	TypeTroubleshooting: "Diagnose the described problem step by step, using only the reference material above. Start with the most likely cause.",
	TypeSafety:          "Answer with a focus on safety: state every warning, required protective equipment, and prohibition the reference material gives before anything else.",
}

// PromptBuilder assembles the grounded answer prompt: numbered source
// excerpts, task framing, guidelines, then the user question.
type PromptBuilder struct {
	query    string
	sources  []rerank.Result
	kind     AnswerType
	language string
}

func NewPromptBuilder(query string, sources []rerank.Result) *PromptBuilder {
	return &PromptBuilder{
		query:   query,
		sources: sources,
		kind:    TypeQA,
	}
}

// WithType overrides the qa default.
func (b *PromptBuilder) WithType(kind AnswerType) *PromptBuilder {
	if _, ok := taskInstructions[kind]; ok {
		b.kind = kind
	}
	return b
}

// WithLanguage pins the answer language; empty means follow the question.
func (b *PromptBuilder) WithLanguage(language string) *PromptBuilder {
	b.language = language
	return b
}

func (b *PromptBuilder) Build() string {
	var prompt strings.Builder

	b.writeSources(&prompt)
	b.writeTask(&prompt)
	b.writeGuidelines(&prompt)
	b.writeUserQuery(&prompt)

	return prompt.String()
}

func (b *PromptBuilder) writeSources(prompt *strings.Builder) {
	if len(b.sources) == 0 {
		return
	}

	prompt.WriteString("<reference_material>\n")
	for i, source := range b.sources {
		fmt.Fprintf(prompt, "[Source %d: %s]\n", i+1, source.Scored.DocumentTitle)
		prompt.WriteString(source.Scored.Chunk.Content)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("</reference_material>\n\n")
}

func (b *PromptBuilder) writeTask(prompt *strings.Builder) {
	prompt.WriteString("<task>\n")
	prompt.WriteString("You are a warehouse operations assistant helping workers find procedures, safety rules, and equipment knowledge.\n")
	prompt.WriteString(taskInstructions[b.kind])
	prompt.WriteString("\n</task>\n\n")
}

func (b *PromptBuilder) writeGuidelines(prompt *strings.Builder) {
	prompt.WriteString("<guidelines>\n")
	prompt.WriteString("1. Base your answer strictly on the reference material; never invent procedures or safety rules\n")
	prompt.WriteString("2. Cite sources inline as [Source N] where the material supports a statement\n")
	prompt.WriteString("3. For step-by-step procedures, keep the original step order and do not skip steps\n")
	prompt.WriteString("4. Always mention safety warnings present in the material, even when not asked\n")
	prompt.WriteString("5. If the material does not answer the question, say so plainly instead of guessing\n")
	prompt.WriteString("6. Keep answers practical and short enough to read on a handheld scanner screen\n")
	if b.language != "" {
		fmt.Fprintf(prompt, "7. Answer in the language with ISO code %q regardless of the question's language\n", b.language)
	} else {
		prompt.WriteString("7. Answer in the same language as the question\n")
	}
	prompt.WriteString("</guidelines>\n\n")
}

func (b *PromptBuilder) writeUserQuery(prompt *strings.Builder) {
	prompt.WriteString("<question>\n")
	prompt.WriteString(b.query)
	prompt.WriteString("\n</question>\n")
}

// BuildMessages wraps the prompt with conversation history so follow-up
// questions keep their referents. History is already capped by the caller.
func BuildMessages(prompt string, history []llm.Message) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llm.Message{
		Role:    "user",
		Content: prompt,
	})
	return messages
}

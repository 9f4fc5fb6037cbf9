package dto

import (
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/answer"

	"github.com/google/uuid"
)

// Answer queries carry tighter length bounds than interactive search:
// completion calls are expensive enough to reject throwaway inputs early.
type AnswerRequest struct {
	Query          string        `json:"query" validate:"required,min=5,max=1000"`
	Type           string        `json:"type" validate:"omitempty,oneof=qa summary explanation troubleshooting safety"`
	Filters        SearchFilters `json:"filters"`
	ConversationId *uuid.UUID    `json:"conversation_id"`
	Language       string        `json:"language"`
}

type AnswerUsage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	EstimatedCost    float64 `json:"estimated_cost"`
}

type AnswerPayload struct {
	Text             string          `json:"text"`
	Confidence       float64         `json:"confidence"`
	Sources          []answer.Source `json:"sources"`
	RelatedQuestions []string        `json:"related_questions,omitempty"`
	Usage            *AnswerUsage    `json:"usage,omitempty"`
}

type AnswerResponse struct {
	// Answer is null when no chunk cleared the answer threshold.
	Answer          *AnswerPayload `json:"answer"`
	ConversationId  uuid.UUID      `json:"conversation_id"`
	ExecutionTimeMs int64          `json:"execution_time_ms"`
}

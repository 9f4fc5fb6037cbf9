package entity

import "time"

const (
	UsageOpEmbedding  = "embedding"
	UsageOpCompletion = "completion"
)

// AiUsage accumulates provider spend per calendar day and operation.
type AiUsage struct {
	Day              time.Time // truncated to UTC midnight
	Operation        string
	Requests         int64
	PromptTokens     int64
	CompletionTokens int64
	EstimatedCost    float64
}

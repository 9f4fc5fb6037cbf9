package model

import "time"

// AiUsage has one row per (day, operation); counters are incremented with an
// upsert so concurrent recorders never race on insert.
type AiUsage struct {
	Day              time.Time `gorm:"type:date;primaryKey"`
	Operation        string    `gorm:"type:varchar(20);primaryKey"`
	Requests         int64     `gorm:"default:0"`
	PromptTokens     int64     `gorm:"default:0"`
	CompletionTokens int64     `gorm:"default:0"`
	EstimatedCost    float64   `gorm:"default:0"`
}

func (AiUsage) TableName() string {
	return "ai_usage"
}

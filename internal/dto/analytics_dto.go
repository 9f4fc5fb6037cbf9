package dto

import (
	"time"

	"github.com/mustafa-mbari/aiwmsa/pkg/analytics"
)

type TrendingResponse struct {
	WindowDays int                        `json:"window_days"`
	Queries    []*analytics.TrendingQuery `json:"queries"`
}

type UsageReportResponse struct {
	From time.Time      `json:"from"`
	To   time.Time      `json:"to"`
	Days []UsageDayItem `json:"days"`

	TotalRequests      int64   `json:"total_requests"`
	TotalEstimatedCost float64 `json:"total_estimated_cost"`
}

type UsageDayItem struct {
	Day              time.Time `json:"day"`
	Operation        string    `json:"operation"`
	Requests         int64     `json:"requests"`
	PromptTokens     int64     `json:"prompt_tokens"`
	CompletionTokens int64     `json:"completion_tokens"`
	EstimatedCost    float64   `json:"estimated_cost"`
}

type SearchStatsResponse struct {
	TotalSearches      int64   `json:"total_searches"`
	FailedSearches     int64   `json:"failed_searches"`
	ZeroResultSearches int64   `json:"zero_result_searches"`
	AvgExecutionMs     float64 `json:"avg_execution_ms"`
}

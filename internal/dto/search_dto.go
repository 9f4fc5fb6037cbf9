package dto

import (
	"time"

	"github.com/mustafa-mbari/aiwmsa/pkg/rag/search"

	"github.com/google/uuid"
)

type SearchRequest struct {
	Query         string        `json:"query" validate:"required,min=2,max=500"`
	Limit         int           `json:"limit" validate:"omitempty,min=1,max=100"`
	Offset        int           `json:"offset" validate:"omitempty,min=0,max=1000"`
	Filters       SearchFilters `json:"filters"`
	IncludeAnswer bool          `json:"include_answer"`
	PreviousQuery string        `json:"previous_query"`
	Language      string        `json:"language"`
}

// SearchFilters is the wire shape of the typed filter set.
type SearchFilters struct {
	WarehouseId  *uuid.UUID `json:"warehouse_id"`
	DepartmentId *uuid.UUID `json:"department_id"`
	DocumentType string     `json:"document_type"`
	Language     string     `json:"language"`
	DateFrom     *time.Time `json:"date_from"`
	DateTo       *time.Time `json:"date_to"`
	Tags         []string   `json:"tags"`
	Categories   []string   `json:"categories"`
	DocumentId   *uuid.UUID `json:"document_id"`
}

type SearchResponse struct {
	QueryId         uuid.UUID       `json:"query_id"`
	Results         []search.Result `json:"results"`
	TotalCount      int64           `json:"total_count"`
	Suggestions     []string        `json:"suggestions,omitempty"`
	Answer          *AnswerPayload  `json:"answer,omitempty"`
	AnswerDegraded  bool            `json:"answer_degraded,omitempty"`
	ExecutionTimeMs int64           `json:"execution_time_ms"`
	Cached          bool            `json:"cached"`
}

type SuggestionsResponse struct {
	Suggestions []SuggestionItem `json:"suggestions"`
}

type SuggestionItem struct {
	Text       string `json:"text"`
	UsageCount int64  `json:"usage_count"`
}

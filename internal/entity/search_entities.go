package entity

import (
	"time"

	"github.com/google/uuid"
)

// SearchFilters is the enumerated, typed filter set accepted by the vector
// store. All set fields compose with logical AND. An open metadata map is
// deliberately not part of this struct so filter composition stays type-checked.
type SearchFilters struct {
	WarehouseId  *uuid.UUID `json:"warehouseId,omitempty"`
	DepartmentId *uuid.UUID `json:"departmentId,omitempty"`
	DocumentType string     `json:"documentType,omitempty"`
	Language     string     `json:"language,omitempty"`
	DateFrom     *time.Time `json:"dateFrom,omitempty"`
	DateTo       *time.Time `json:"dateTo,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	Categories   []string   `json:"categories,omitempty"`
	// DocumentId restricts the search to a single document's chunks.
	DocumentId *uuid.UUID `json:"documentId,omitempty"`
}

// IsZero reports whether no filter field is set.
func (f SearchFilters) IsZero() bool {
	return f.WarehouseId == nil && f.DepartmentId == nil && f.DocumentType == "" &&
		f.Language == "" && f.DateFrom == nil && f.DateTo == nil &&
		len(f.Tags) == 0 && len(f.Categories) == 0 && f.DocumentId == nil
}

// SearchQuery is one row of the append-only search log. Never updated after
// insert; failed searches are logged too, with Successful=false.
type SearchQuery struct {
	Id              uuid.UUID
	UserId          *uuid.UUID // nil for anonymous searches
	QueryText       string
	QueryEmbedding  []float32
	Filters         SearchFilters
	ResultsCount    int
	ExecutionTimeMs int64
	Language        string
	Successful      bool
	ErrorMessage    string
	CreatedAt       time.Time
}

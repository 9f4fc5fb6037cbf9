package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

type ByUserID struct {
	UserID uuid.UUID
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ByConversationID struct {
	ConversationID uuid.UUID
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

type ByNormalizedQuery struct {
	Query string
}

func (s ByNormalizedQuery) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("normalized_query = ?", s.Query)
}

type CreatedSince struct {
	Since time.Time
}

func (s CreatedSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at >= ?", s.Since)
}

// SuccessfulOnly narrows search-log scans to queries that completed.
type SuccessfulOnly struct{}

func (s SuccessfulOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("successful = ?", true)
}

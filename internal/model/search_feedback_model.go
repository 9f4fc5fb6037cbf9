package model

import (
	"time"

	"github.com/google/uuid"
)

// The upsert target idx_feedback_query_user_result is created by the migrate
// step with NULLS NOT DISTINCT, which gorm tags cannot express; a plain unique
// index would never conflict on query-level feedback (result_id NULL).
type SearchFeedback struct {
	Id            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SearchQueryId uuid.UUID  `gorm:"type:uuid;not null"`
	UserId        uuid.UUID  `gorm:"type:uuid;not null"`
	ResultId      *uuid.UUID `gorm:"type:uuid"`
	Rating        string     `gorm:"type:feedback_rating;not null"`
	Clicked       bool       `gorm:"default:false"`
	TimeToClickMs *int64
	DwellTimeMs   *int64
	Comment       string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (SearchFeedback) TableName() string {
	return "search_feedback"
}

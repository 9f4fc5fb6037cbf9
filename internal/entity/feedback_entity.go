package entity

import (
	"time"

	"github.com/google/uuid"
)

type FeedbackRating string

const (
	RatingHelpful          FeedbackRating = "helpful"
	RatingNotHelpful       FeedbackRating = "not_helpful"
	RatingPartiallyHelpful FeedbackRating = "partially_helpful"
)

// SearchFeedback attaches to a logged search and optionally to one result.
// At most one row exists per (query, user, result); writes upsert, last one
// wins.
type SearchFeedback struct {
	Id            uuid.UUID
	SearchQueryId uuid.UUID
	UserId        uuid.UUID
	ResultId      *uuid.UUID
	Rating        FeedbackRating
	Clicked       bool
	TimeToClickMs *int64
	DwellTimeMs   *int64
	Comment       string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

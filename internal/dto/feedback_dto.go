package dto

import "github.com/google/uuid"

type SubmitFeedbackRequest struct {
	SearchQueryId uuid.UUID  `json:"search_query_id" validate:"required"`
	ResultId      *uuid.UUID `json:"result_id"`
	Rating        string     `json:"rating" validate:"required,oneof=helpful not_helpful partially_helpful"`
	Clicked       bool       `json:"clicked"`
	TimeToClickMs *int64     `json:"time_to_click_ms" validate:"omitempty,min=0"`
	DwellTimeMs   *int64     `json:"dwell_time_ms" validate:"omitempty,min=0"`
	Comment       string     `json:"comment" validate:"max=2000"`
}

type SubmitFeedbackResponse struct {
	Id uuid.UUID `json:"id"`
}

package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeSearchExecuted    = "SEARCH_EXECUTED"
	TypeFeedbackSubmitted = "FEEDBACK_SUBMITTED"
	TypeAnswerGenerated   = "ANSWER_GENERATED"
	TypeDocumentIndexed   = "DOCUMENT_INDEXED"
)

func NewSearchExecuted(queryId uuid.UUID, queryText string, resultCount int, executionMs int64, successful bool) Event {
	return BaseEvent{
		Type: TypeSearchExecuted,
		Data: map[string]interface{}{
			"queryId":     queryId.String(),
			"queryText":   queryText,
			"resultCount": resultCount,
			"executionMs": executionMs,
			"successful":  successful,
		},
		OccurredAt: time.Now(),
	}
}

func NewFeedbackSubmitted(queryId, userId uuid.UUID, rating string) Event {
	return BaseEvent{
		Type: TypeFeedbackSubmitted,
		Data: map[string]interface{}{
			"queryId": queryId.String(),
			"userId":  userId.String(),
			"rating":  rating,
		},
		OccurredAt: time.Now(),
	}
}

func NewAnswerGenerated(queryText string, confidence float64, sourceCount int) Event {
	return BaseEvent{
		Type: TypeAnswerGenerated,
		Data: map[string]interface{}{
			"queryText":   queryText,
			"confidence":  confidence,
			"sourceCount": sourceCount,
		},
		OccurredAt: time.Now(),
	}
}

func NewDocumentIndexed(documentId uuid.UUID, chunkCount, embeddedCount int) Event {
	return BaseEvent{
		Type: TypeDocumentIndexed,
		Data: map[string]interface{}{
			"documentId":    documentId.String(),
			"chunkCount":    chunkCount,
			"embeddedCount": embeddedCount,
		},
		OccurredAt: time.Now(),
	}
}

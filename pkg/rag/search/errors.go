package search

import "errors"

var (
	// ErrInvalidQuery rejects queries outside the accepted shape before any
	// provider call is made.
	ErrInvalidQuery = errors.New("invalid search query")

	// ErrSearchUnavailable signals a degraded dependency (embedding provider
	// or vector store); the request may succeed on retry.
	ErrSearchUnavailable = errors.New("search temporarily unavailable")

	// ErrCancelled reports that a newer query from the same client
	// superseded this one.
	ErrCancelled = errors.New("search cancelled")
)

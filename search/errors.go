package search

import "errors"

var (
	// ErrEmbedderRequired is returned when creating a searcher without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrSearcherRequired is returned when creating a searcher without a point searcher.
	ErrSearcherRequired = errors.New("point searcher is required")

	// ErrEmptyQuery is returned for a blank query string.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrBadDateRange is returned when a date bound is not valid
	// RFC3339. Callers should treat it as a bad request, not a
	// backend failure.
	ErrBadDateRange = errors.New("invalid date range")
)

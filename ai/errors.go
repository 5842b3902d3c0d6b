package ai

import "errors"

var (
	// ErrEmptyBatch is returned when EmbedImages is called with no paths.
	ErrEmptyBatch = errors.New("image batch cannot be empty")

	// ErrServiceUnavailable indicates the inference service could not
	// be reached.
	ErrServiceUnavailable = errors.New("inference service unreachable")

	// ErrInferenceFailure indicates the inference service answered with
	// a non-2xx status or an undecodable body. The whole batch fails;
	// no partial results are assumed.
	ErrInferenceFailure = errors.New("inference service reported failure")
)

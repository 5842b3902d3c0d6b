package ingestion

import "errors"

var (
	// ErrMetadataSourceRequired is returned when creating a pipeline without a metadata source.
	ErrMetadataSourceRequired = errors.New("metadata source is required")

	// ErrEmbedderRequired is returned when creating a pipeline without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrPointWriterRequired is returned when creating a pipeline without a point writer.
	ErrPointWriterRequired = errors.New("point writer is required")

	// ErrCameraRequired is returned when creating a pipeline without a camera id.
	ErrCameraRequired = errors.New("camera id is required")

	// ErrMissingDatetime is returned by the point builder when a
	// descriptor carries no date or time and its filename cannot be
	// parsed either.
	ErrMissingDatetime = errors.New("descriptor has no usable datetime")
)

package ai

import "context"

// Embedder generates vector embeddings via the inference service.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedImages submits a batch of image references and returns one
	// result per reference, in service-defined order. A result may
	// carry an in-band error instead of a vector; that is not a call
	// failure. An empty batch is rejected without a network call.
	EmbedImages(ctx context.Context, paths []string) ([]EmbeddingResult, error)

	// EmbedText generates an embedding for a single query string.
	// Used by the search path; shares the image vector space.
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

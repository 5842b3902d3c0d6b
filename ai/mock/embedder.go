package mock

import (
	"context"
	"hash/fnv"

	"github.com/poiesic/camvec/ai"
)

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// EmbedImagesFunc is called by EmbedImages if set.
	// If nil, uses default deterministic behavior.
	EmbedImagesFunc func(ctx context.Context, paths []string) ([]ai.EmbeddingResult, error)

	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// Dim is the dimensionality of generated vectors. Defaults to 1152.
	Dim int

	callCount int
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

func (m *MockEmbedder) dim() int {
	if m.Dim > 0 {
		return m.Dim
	}
	return 1152
}

// EmbedImages generates one deterministic result per path, derived
// from the path hash so the same path always yields the same vector.
func (m *MockEmbedder) EmbedImages(ctx context.Context, paths []string) ([]ai.EmbeddingResult, error) {
	m.callCount++

	if m.EmbedImagesFunc != nil {
		return m.EmbedImagesFunc(ctx, paths)
	}

	if len(paths) == 0 {
		return nil, ai.ErrEmptyBatch
	}

	results := make([]ai.EmbeddingResult, len(paths))
	for i, path := range paths {
		results[i] = ai.EmbeddingResult{
			Path:   path,
			Vector: generateDeterministicVector(path, m.dim()),
		}
	}
	return results, nil
}

// EmbedText generates a deterministic embedding from the text hash.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount++

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}

	return generateDeterministicVector(text, m.dim()), nil
}

// CallCount returns the number of times any method was called.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockEmbedder) Reset() {
	m.callCount = 0
	m.EmbedImagesFunc = nil
	m.EmbedTextFunc = nil
}

// generateDeterministicVector creates a deterministic embedding vector
// from a seed string using an FNV hash and an LCG.
func generateDeterministicVector(seedText string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(seedText))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
	}
	return vector
}

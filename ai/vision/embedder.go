package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/poiesic/camvec/ai"
)

type batchRequest struct {
	ImagePaths []string `json:"image_paths"`
}

type batchResponse struct {
	Type    string `json:"type"`
	Results []struct {
		Path      string    `json:"path"`
		Embedding []float32 `json:"embedding"`
		Error     string    `json:"error"`
	} `json:"results"`
}

type textRequest struct {
	Text string `json:"text"`
}

// textResponse accepts both keys the service has historically used.
type textResponse struct {
	Vector    []float32 `json:"vector"`
	Embedding []float32 `json:"embedding"`
}

// Embedder implements ai.Embedder against the inference service.
type Embedder struct {
	host       string
	httpClient *http.Client
	logger     *slog.Logger
}

// newEmbedder is the internal constructor returning the concrete type.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Embedder{
		host:       config.Host,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     slog.Default().With("component", "vision-embedder"),
	}, nil
}

// NewEmbedder creates an embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedImages submits one batch request for all paths. A non-2xx
// response fails the whole batch; per-path errors come back in-band.
func (e *Embedder) EmbedImages(ctx context.Context, paths []string) ([]ai.EmbeddingResult, error) {
	if len(paths) == 0 {
		return nil, ai.ErrEmptyBatch
	}

	e.logger.Debug("requesting batch embeddings", "count", len(paths))

	var decoded batchResponse
	if err := e.post(ctx, batchRequest{ImagePaths: paths}, &decoded); err != nil {
		e.logger.Error("batch embedding call failed", "count", len(paths), "err", err)
		return nil, err
	}

	results := make([]ai.EmbeddingResult, len(decoded.Results))
	for i, r := range decoded.Results {
		results[i] = ai.EmbeddingResult{Path: r.Path, Vector: r.Embedding, Err: r.Error}
	}

	e.logger.Debug("received batch embeddings", "results", len(results))
	return results, nil
}

// EmbedText generates an embedding for a single query string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	var decoded textResponse
	if err := e.post(ctx, textRequest{Text: text}, &decoded); err != nil {
		e.logger.Error("text embedding call failed", "err", err)
		return nil, err
	}

	if len(decoded.Vector) > 0 {
		return decoded.Vector, nil
	}
	return decoded.Embedding, nil
}

func (e *Embedder) post(ctx context.Context, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.host+"/predict", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ai.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ai.ErrInferenceFailure, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %w", ai.ErrInferenceFailure, err)
	}
	return nil
}

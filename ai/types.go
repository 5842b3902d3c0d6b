package ai

// EmbeddingResult is one per-reference outcome from a batch call.
// Path is the correlation key; it echoes the submitted file path
// exactly. Either Vector or Err is populated.
type EmbeddingResult struct {
	Path   string
	Vector []float32
	Err    string
}

// Failed reports whether this result is unusable: it carries an
// in-band error or no vector at all.
func (r *EmbeddingResult) Failed() bool {
	return r.Err != "" || len(r.Vector) == 0
}

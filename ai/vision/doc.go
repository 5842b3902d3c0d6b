// Package vision implements ai.Embedder over the inference service's
// HTTP protocol. One endpoint serves both modes: an image_paths batch
// request returns per-path results, a text request returns a single
// vector.
package vision

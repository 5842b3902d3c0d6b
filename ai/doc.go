// Package ai defines the contracts for the remote inference service
// that turns CCTV images and query text into vector embeddings.
//
// The service speaks a small JSON protocol of its own: a batch of image
// paths goes up in one request and each path comes back with either a
// vector or an in-band error string. Reference-level errors are data,
// not protocol failures; only a non-2xx response fails the whole batch.
// Results arrive in service-defined order, so callers correlate by the
// path string, never by position.
//
// The vision subpackage implements these contracts over HTTP; the mock
// subpackage provides deterministic test doubles.
package ai

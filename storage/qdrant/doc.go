// Package qdrant implements storage.PointRepository over the Qdrant
// gRPC API. Points are keyed by the source-assigned integer id so
// upserts converge; the datetime payload field carries a range index
// for filtered searches.
package qdrant

package storage

import (
	"context"
	"time"

	"github.com/poiesic/camvec/core"
)

// DatetimeFilter restricts a search to points whose datetime attribute
// falls inside (Start, End]. A zero bound is unbounded on that side.
type DatetimeFilter struct {
	Start time.Time
	End   time.Time
}

// Empty reports whether the filter constrains anything.
func (f *DatetimeFilter) Empty() bool {
	return f == nil || (f.Start.IsZero() && f.End.IsZero())
}

// PointWriter writes vector points. Upserts are idempotent by point
// id: writing the same id twice leaves one point with the latest
// attribute values.
type PointWriter interface {
	// UpsertPoint creates or overwrites one point.
	UpsertPoint(ctx context.Context, point *core.VectorPoint) error
}

// PointSearcher runs similarity searches over stored points.
type PointSearcher interface {
	// Search returns up to limit hits nearest to vector, optionally
	// restricted by a datetime filter, ordered by score descending.
	Search(ctx context.Context, vector []float32, limit uint64, filter *DatetimeFilter) ([]*core.SearchHit, error)
}

// PointRepository is the full vector-store contract the service needs.
type PointRepository interface {
	PointWriter
	PointSearcher

	// EnsureCollection creates the collection with the configured
	// vector size and cosine distance if it does not exist yet.
	EnsureCollection(ctx context.Context, vectorSize uint64) error

	// EnsureDatetimeIndex creates the datetime field index that backs
	// range-filtered searches. Safe to call repeatedly.
	EnsureDatetimeIndex(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}

// RunJournal records pipeline run outcomes. It is append-only audit
// data; the pipeline never reads it back to decide anything.
type RunJournal interface {
	// Append stores one run report.
	Append(ctx context.Context, report *core.RunReport) error

	// Recent returns up to limit reports, newest first.
	Recent(ctx context.Context, limit int) ([]*core.RunReport, error)

	// Close closes the journal backend.
	Close() error
}

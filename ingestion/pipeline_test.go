package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/camvec/ai"
	"github.com/poiesic/camvec/ai/mock"
	"github.com/poiesic/camvec/core"
	"github.com/poiesic/camvec/storage"
)

type fakeSource struct {
	mu          sync.Mutex
	descriptors []core.ImageDescriptor
	err         error
	lastWindow  core.Window
	lastLimit   int
	calls       int
}

func (f *fakeSource) FetchTrainData(ctx context.Context, cameraID string, window core.Window, limit int) ([]core.ImageDescriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastWindow = window
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.descriptors, nil
}

type fakeWriter struct {
	mu      sync.Mutex
	points  map[uint64]*core.VectorPoint
	failIDs map[uint64]bool
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{points: make(map[uint64]*core.VectorPoint)}
}

func (f *fakeWriter) UpsertPoint(ctx context.Context, point *core.VectorPoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[point.ID] {
		return storage.ErrUpsertFailed
	}
	f.points[point.ID] = point
	return nil
}

func (f *fakeWriter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.points)
}

type fakeJournal struct {
	mu      sync.Mutex
	reports []*core.RunReport
}

func (f *fakeJournal) Append(ctx context.Context, report *core.RunReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, report)
	return nil
}

func (f *fakeJournal) Recent(ctx context.Context, limit int) ([]*core.RunReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reports, nil
}

func (f *fakeJournal) Close() error { return nil }

func makeDescriptors(n int) []core.ImageDescriptor {
	descriptors := make([]core.ImageDescriptor, n)
	for i := range descriptors {
		descriptors[i] = core.ImageDescriptor{
			ID:       uint64(i + 1),
			CameraID: "cam01",
			Date:     "2025-10-02",
			Time:     fmt.Sprintf("13:%02d:00", i),
			Filename: fmt.Sprintf("cam01_2025-10-02_13:%02d:00_%06d.jpg", i, i),
			FilePath: fmt.Sprintf("/frames/cam01/%06d.jpg", i),
		}
	}
	return descriptors
}

func newTestPipeline(t *testing.T, source MetadataSource, embedder ai.Embedder, writer storage.PointWriter, opts ...Option) *Pipeline {
	t.Helper()
	pipeline, err := NewPipeline(source, embedder, writer, "cam01", opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)
	return pipeline
}

func TestPipelineRunUpsertsAllItems(t *testing.T) {
	source := &fakeSource{descriptors: makeDescriptors(3)}
	writer := newFakeWriter()
	embedder := mock.NewMockEmbedder()
	embedder.Dim = 4

	pipeline := newTestPipeline(t, source, embedder, writer)

	report, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 3, report.Embedded)
	assert.Equal(t, 3, report.Upserted)
	assert.Equal(t, 0, report.Skipped)
	assert.Empty(t, report.Err)
	assert.Equal(t, 3, writer.count())
}

func TestPipelineCorrelatesOutOfOrderResults(t *testing.T) {
	descriptors := makeDescriptors(3)
	source := &fakeSource{descriptors: descriptors}
	writer := newFakeWriter()

	embedder := &mock.MockEmbedder{
		EmbedImagesFunc: func(ctx context.Context, paths []string) ([]ai.EmbeddingResult, error) {
			// Service returns results in its own order.
			results := make([]ai.EmbeddingResult, 0, len(paths))
			for i := len(paths) - 1; i >= 0; i-- {
				results = append(results, ai.EmbeddingResult{
					Path:   paths[i],
					Vector: []float32{float32(i)},
				})
			}
			return results, nil
		},
	}

	pipeline := newTestPipeline(t, source, embedder, writer)

	report, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, report.Upserted)

	// Each point got the vector for its own path, not a positional one.
	for i, desc := range descriptors {
		point := writer.points[desc.ID]
		require.NotNil(t, point)
		assert.Equal(t, []float32{float32(i)}, point.Vector)
	}
}

func TestPipelineInBandErrorSkipsOneItem(t *testing.T) {
	source := &fakeSource{descriptors: makeDescriptors(4)}
	writer := newFakeWriter()

	embedder := &mock.MockEmbedder{
		EmbedImagesFunc: func(ctx context.Context, paths []string) ([]ai.EmbeddingResult, error) {
			results := make([]ai.EmbeddingResult, len(paths))
			for i, path := range paths {
				if i == 1 {
					results[i] = ai.EmbeddingResult{Path: path, Err: "corrupt image"}
					continue
				}
				results[i] = ai.EmbeddingResult{Path: path, Vector: []float32{1}}
			}
			return results, nil
		},
	}

	pipeline := newTestPipeline(t, source, embedder, writer)

	report, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Fetched)
	assert.Equal(t, 3, report.Embedded)
	assert.Equal(t, 3, report.Upserted)
	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, report.Err, "in-band errors are not run failures")
}

func TestPipelineCorrelationMissSkips(t *testing.T) {
	source := &fakeSource{descriptors: makeDescriptors(2)}
	writer := newFakeWriter()

	embedder := &mock.MockEmbedder{
		EmbedImagesFunc: func(ctx context.Context, paths []string) ([]ai.EmbeddingResult, error) {
			// Service drops the second reference entirely.
			return []ai.EmbeddingResult{
				{Path: paths[0], Vector: []float32{1}},
			}, nil
		},
	}

	pipeline := newTestPipeline(t, source, embedder, writer)

	report, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Upserted)
	assert.Equal(t, 1, report.Skipped)
}

func TestPipelineOrphanResultDroppedWithWarning(t *testing.T) {
	source := &fakeSource{descriptors: makeDescriptors(2)}
	writer := newFakeWriter()

	embedder := &mock.MockEmbedder{
		EmbedImagesFunc: func(ctx context.Context, paths []string) ([]ai.EmbeddingResult, error) {
			results := make([]ai.EmbeddingResult, 0, len(paths)+1)
			for _, path := range paths {
				results = append(results, ai.EmbeddingResult{Path: path, Vector: []float32{1}})
			}
			// A path nobody asked for.
			results = append(results, ai.EmbeddingResult{Path: "/frames/cam99/999999.jpg", Vector: []float32{9}})
			return results, nil
		},
	}

	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	pipeline := newTestPipeline(t, source, embedder, writer, WithLogger(logger))

	report, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Embedded, "orphan result must not count as embedded")
	assert.Equal(t, 2, report.Upserted)
	assert.Equal(t, 2, writer.count())
	assert.Contains(t, logBuf.String(), "no descriptor for embedding result")
	assert.Contains(t, logBuf.String(), "/frames/cam99/999999.jpg")
}

func TestPipelineReingestIsIdempotent(t *testing.T) {
	descriptors := makeDescriptors(3)
	source := &fakeSource{descriptors: descriptors}
	writer := newFakeWriter()
	embedder := mock.NewMockEmbedder()
	embedder.Dim = 4

	pipeline := newTestPipeline(t, source, embedder, writer)

	report, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, report.Upserted)
	require.Equal(t, 3, writer.count())

	// Same records come back on the next window with one updated
	// attribute. Re-ingesting must overwrite, not duplicate.
	updated := make([]core.ImageDescriptor, len(descriptors))
	copy(updated, descriptors)
	updated[1].VehicleType = 5
	source.mu.Lock()
	source.descriptors = updated
	source.mu.Unlock()

	report, err = pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Upserted)

	assert.Equal(t, 3, writer.count(), "second run must overwrite by id, not add points")
	point := writer.points[updated[1].ID]
	require.NotNil(t, point)
	assert.Equal(t, int64(5), point.Payload["vehicle_type"], "overwrite keeps the latest attributes")
}

func TestPipelineFetchFailureAborts(t *testing.T) {
	source := &fakeSource{err: errors.New("service unavailable")}
	writer := newFakeWriter()
	embedder := mock.NewMockEmbedder()

	pipeline := newTestPipeline(t, source, embedder, writer)

	report, err := pipeline.Run(context.Background())
	require.Error(t, err)
	assert.NotEmpty(t, report.Err)
	assert.Equal(t, 0, embedder.CallCount(), "failed fetch must not reach the embedder")
	assert.Equal(t, 0, writer.count())
}

func TestPipelineEmbedFailureAborts(t *testing.T) {
	source := &fakeSource{descriptors: makeDescriptors(2)}
	writer := newFakeWriter()

	embedder := &mock.MockEmbedder{
		EmbedImagesFunc: func(ctx context.Context, paths []string) ([]ai.EmbeddingResult, error) {
			return nil, ai.ErrInferenceFailure
		},
	}

	pipeline := newTestPipeline(t, source, embedder, writer)

	report, err := pipeline.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrInferenceFailure)
	assert.Equal(t, 2, report.Fetched)
	assert.Equal(t, 0, writer.count())
}

func TestPipelineUpsertErrorSkipsItem(t *testing.T) {
	source := &fakeSource{descriptors: makeDescriptors(3)}
	writer := newFakeWriter()
	writer.failIDs = map[uint64]bool{2: true}
	embedder := mock.NewMockEmbedder()
	embedder.Dim = 4

	pipeline := newTestPipeline(t, source, embedder, writer)

	report, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Upserted)
	assert.Equal(t, 1, report.Skipped)
}

func TestPipelineEmptyFetchIsQuietSuccess(t *testing.T) {
	source := &fakeSource{}
	writer := newFakeWriter()
	embedder := mock.NewMockEmbedder()

	pipeline := newTestPipeline(t, source, embedder, writer)

	report, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Fetched)
	assert.Equal(t, 0, embedder.CallCount())
}

func TestPipelineJournalsEveryRun(t *testing.T) {
	journal := &fakeJournal{}
	source := &fakeSource{descriptors: makeDescriptors(1)}

	pipeline := newTestPipeline(t, source, mock.NewMockEmbedder(), newFakeWriter(),
		WithJournal(journal))

	_, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	// Failed runs are journaled too.
	source.mu.Lock()
	source.err = errors.New("down")
	source.mu.Unlock()
	_, err = pipeline.Run(context.Background())
	require.Error(t, err)

	journal.mu.Lock()
	defer journal.mu.Unlock()
	require.Len(t, journal.reports, 2)
	assert.Empty(t, journal.reports[0].Err)
	assert.Contains(t, journal.reports[1].Err, "down")
}

func TestPipelineWindowUsesLookbackAndLocation(t *testing.T) {
	source := &fakeSource{descriptors: nil}
	loc := time.FixedZone("ICT", 7*3600)
	now := time.Date(2025, 10, 2, 6, 0, 0, 0, time.UTC)

	pipeline := newTestPipeline(t, source, mock.NewMockEmbedder(), newFakeWriter(),
		WithLookbackDays(2),
		WithLocation(loc),
		WithFetchLimit(50),
		withClock(func() time.Time { return now }),
	)

	_, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 50, source.lastLimit)
	assert.Equal(t, "2025-10-02 13:00:00", source.lastWindow.StopString())
	assert.Equal(t, "2025-09-30 13:00:00", source.lastWindow.StartString())
}

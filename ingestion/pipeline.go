package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/camvec/ai"
	"github.com/poiesic/camvec/core"
	"github.com/poiesic/camvec/storage"
)

const (
	defaultFetchLimit   = 20
	defaultLookbackDays = 2
)

// MetadataSource fetches image descriptors for a camera and window.
// *cctv.Client satisfies it.
type MetadataSource interface {
	FetchTrainData(ctx context.Context, cameraID string, window core.Window, limit int) ([]core.ImageDescriptor, error)
}

// Pipeline runs the fetch, embed and upsert stages for one camera.
// A stage failure aborts the run; a single bad item is logged and
// skipped while the rest of the batch proceeds. Upserts are
// independent and idempotent, so they run concurrently on a bounded
// worker pool.
type Pipeline struct {
	source   MetadataSource
	embedder ai.Embedder
	writer   storage.PointWriter
	journal  storage.RunJournal
	pool     *ants.Pool

	cameraID string
	limit    int
	days     int
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the upsert worker pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "pipeline")
		return nil
	}
}

// WithJournal records a RunReport for every run.
func WithJournal(journal storage.RunJournal) Option {
	return func(p *Pipeline) error {
		p.journal = journal
		return nil
	}
}

// WithFetchLimit caps how many descriptors a run requests. Default 20.
func WithFetchLimit(limit int) Option {
	return func(p *Pipeline) error {
		if limit > 0 {
			p.limit = limit
		}
		return nil
	}
}

// WithLookbackDays sets the window length in days. Default 2.
func WithLookbackDays(days int) Option {
	return func(p *Pipeline) error {
		if days > 0 {
			p.days = days
		}
		return nil
	}
}

// WithLocation sets the civil timezone the window is computed in.
// Default Asia/Bangkok.
func WithLocation(loc *time.Location) Option {
	return func(p *Pipeline) error {
		if loc != nil {
			p.location = loc
		}
		return nil
	}
}

// withClock overrides the time source. Test use only.
func withClock(now func() time.Time) Option {
	return func(p *Pipeline) error {
		p.now = now
		return nil
	}
}

// NewPipeline creates a pipeline for one camera.
func NewPipeline(
	source MetadataSource,
	embedder ai.Embedder,
	writer storage.PointWriter,
	cameraID string,
	opts ...Option,
) (*Pipeline, error) {
	if source == nil {
		return nil, ErrMetadataSourceRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if writer == nil {
		return nil, ErrPointWriterRequired
	}
	if cameraID == "" {
		return nil, ErrCameraRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		pool.Release()
		return nil, err
	}

	p := &Pipeline{
		source:   source,
		embedder: embedder,
		writer:   writer,
		pool:     pool,
		cameraID: cameraID,
		limit:    defaultFetchLimit,
		days:     defaultLookbackDays,
		location: loc,
		now:      time.Now,
		logger:   slog.Default().With("component", "pipeline"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Run executes one fetch-embed-upsert cycle and returns its report.
// The report is journaled (when a journal is configured) whether the
// run succeeded or aborted. The returned error is non-nil only for
// stage-level failures; per-item failures are counted as skips.
func (p *Pipeline) Run(ctx context.Context) (*core.RunReport, error) {
	report := &core.RunReport{StartedAt: p.now().UTC()}

	err := p.run(ctx, report)
	if err != nil {
		report.Err = err.Error()
	}
	report.FinishedAt = p.now().UTC()

	if p.journal != nil {
		if jerr := p.journal.Append(ctx, report); jerr != nil {
			p.logger.Error("failed to journal run", "err", jerr)
		}
	}

	return report, err
}

func (p *Pipeline) run(ctx context.Context, report *core.RunReport) error {
	window := computeWindow(p.now(), p.days, p.location)

	descriptors, err := p.source.FetchTrainData(ctx, p.cameraID, window, p.limit)
	if err != nil {
		p.logger.Error("metadata fetch failed", "camera", p.cameraID, "err", err)
		return err
	}
	report.Fetched = len(descriptors)

	if len(descriptors) == 0 {
		p.logger.Info("no new metadata", "camera", p.cameraID,
			"window_start", window.StartString(), "window_stop", window.StopString())
		return nil
	}

	paths := make([]string, len(descriptors))
	requested := make(map[string]struct{}, len(descriptors))
	for i := range descriptors {
		paths[i] = descriptors[i].FilePath
		requested[descriptors[i].FilePath] = struct{}{}
	}

	results, err := p.embedder.EmbedImages(ctx, paths)
	if err != nil {
		p.logger.Error("embedding batch failed", "camera", p.cameraID, "count", len(paths), "err", err)
		return err
	}

	// Results come back in service order. Correlate strictly by path;
	// a result no descriptor asked for is dropped with a warning.
	vectors := make(map[string][]float32, len(results))
	for i := range results {
		result := &results[i]
		if result.Failed() {
			p.logger.Warn("embedding failed for image", "path", result.Path, "err", result.Err)
			continue
		}
		if _, ok := requested[result.Path]; !ok {
			p.logger.Warn("no descriptor for embedding result", "path", result.Path)
			continue
		}
		vectors[result.Path] = result.Vector
	}
	report.Embedded = len(vectors)

	var (
		wg       sync.WaitGroup
		upserted atomic.Int64
	)
	for i := range descriptors {
		desc := &descriptors[i]

		vector, ok := vectors[desc.FilePath]
		if !ok {
			p.logger.Warn("no embedding returned for descriptor",
				"id", desc.ID, "path", desc.FilePath)
			continue
		}

		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()

			point, buildErr := BuildPoint(desc, vector, p.now())
			if buildErr != nil {
				p.logger.Warn("skipping descriptor", "id", desc.ID, "err", buildErr)
				return
			}
			if upsertErr := p.writer.UpsertPoint(ctx, point); upsertErr != nil {
				p.logger.Warn("upsert failed", "id", desc.ID, "err", upsertErr)
				return
			}
			upserted.Add(1)
		})
		if submitErr != nil {
			wg.Done()
			p.logger.Warn("failed to submit upsert", "id", desc.ID, "err", submitErr)
		}
	}
	wg.Wait()

	report.Upserted = int(upserted.Load())
	report.Skipped = report.Fetched - report.Upserted

	p.logger.Info("run complete", "camera", p.cameraID,
		"fetched", report.Fetched, "embedded", report.Embedded,
		"upserted", report.Upserted, "skipped", report.Skipped)
	return nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

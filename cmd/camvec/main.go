// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/camvec/ai"
	"github.com/poiesic/camvec/ai/vision"
	"github.com/poiesic/camvec/cctv"
	"github.com/poiesic/camvec/ingestion"
	"github.com/poiesic/camvec/search"
	"github.com/poiesic/camvec/storage"
	"github.com/poiesic/camvec/storage/badger"
	"github.com/poiesic/camvec/storage/qdrant"
)

func main() {
	app := &cli.App{
		Name:  "camvec",
		Usage: "CCTV image embedding ingestion for vector search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"CAMVEC_LOG_LEVEL"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Fetch camera metadata, embed images and upsert vectors",
				Action: ingestCommand,
				Flags: append(append(cctvFlags(), qdrantFlags()...),
					&cli.StringFlag{
						Name:     "camera",
						Usage:    "Camera id to ingest",
						Required: true,
						EnvVars:  []string{"CAMVEC_CAMERA"},
					},
					&cli.StringFlag{
						Name:    "ai-url",
						Usage:   "Embedding service base URL",
						Value:   "http://localhost:5090",
						EnvVars: []string{"CAMVEC_AI_URL"},
					},
					&cli.IntFlag{
						Name:    "limit",
						Usage:   "Maximum records fetched per run",
						Value:   20,
						EnvVars: []string{"CAMVEC_LIMIT"},
					},
					&cli.IntFlag{
						Name:    "days",
						Usage:   "Lookback window in days",
						Value:   2,
						EnvVars: []string{"CAMVEC_DAYS"},
					},
					&cli.IntFlag{
						Name:    "every",
						Usage:   "Minutes between scheduled runs",
						Value:   1,
						EnvVars: []string{"CAMVEC_EVERY"},
					},
					&cli.IntFlag{
						Name:    "pool-size",
						Usage:   "Upsert worker pool size (0 = half the CPUs)",
						EnvVars: []string{"CAMVEC_POOL_SIZE"},
					},
					&cli.StringFlag{
						Name:    "journal",
						Usage:   "Path to the run journal database (empty disables journaling)",
						EnvVars: []string{"CAMVEC_JOURNAL"},
					},
					&cli.BoolFlag{
						Name:  "once",
						Usage: "Run a single cycle and exit instead of scheduling",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search ingested images by text query",
				Action:    searchCommand,
				ArgsUsage: "QUERY",
				Flags: append(qdrantFlags(),
					&cli.StringFlag{
						Name:    "ai-url",
						Usage:   "Embedding service base URL",
						Value:   "http://localhost:5090",
						EnvVars: []string{"CAMVEC_AI_URL"},
					},
					&cli.Uint64Flag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Maximum number of hits",
						Value:   search.DefaultTopK,
					},
					&cli.StringFlag{
						Name:  "from",
						Usage: "Range start, RFC3339 (e.g. 2025-10-01T00:00:00Z)",
					},
					&cli.StringFlag{
						Name:  "to",
						Usage: "Range end, RFC3339",
					},
				),
			},
			{
				Name:   "cameras",
				Usage:  "List camera ids known to the metadata service",
				Action: camerasCommand,
				Flags:  cctvFlags(),
			},
			{
				Name:   "runs",
				Usage:  "Show recent ingestion runs from the journal",
				Action: runsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "journal",
						Usage:    "Path to the run journal database",
						Required: true,
						EnvVars:  []string{"CAMVEC_JOURNAL"},
					},
					&cli.IntFlag{
						Name:  "count",
						Usage: "Number of runs to show",
						Value: 10,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func cctvFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "cctv-url",
			Usage:    "Metadata service base URL",
			Required: true,
			EnvVars:  []string{"CAMVEC_CCTV_URL"},
		},
		&cli.StringFlag{
			Name:     "authorize-code",
			Usage:    "Metadata service authorize code",
			Required: true,
			EnvVars:  []string{"CAMVEC_AUTHORIZE_CODE"},
		},
		&cli.StringFlag{
			Name:     "user-auth",
			Usage:    "Metadata service user auth value",
			Required: true,
			EnvVars:  []string{"CAMVEC_USER_AUTH"},
		},
		&cli.StringFlag{
			Name:     "client-id",
			Usage:    "Metadata service client id",
			Required: true,
			EnvVars:  []string{"CAMVEC_CLIENT_ID"},
		},
	}
}

func qdrantFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "qdrant-addr",
			Usage:   "Qdrant gRPC address",
			Value:   "localhost:6334",
			EnvVars: []string{"CAMVEC_QDRANT_ADDR"},
		},
		&cli.StringFlag{
			Name:    "qdrant-api-key",
			Usage:   "Qdrant API key",
			EnvVars: []string{"CAMVEC_QDRANT_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "collection",
			Usage:   "Qdrant collection name",
			Value:   "nt-cctv-vehicles",
			EnvVars: []string{"CAMVEC_COLLECTION"},
		},
		&cli.Uint64Flag{
			Name:    "vector-size",
			Usage:   "Embedding dimension for collection bootstrap",
			Value:   1152,
			EnvVars: []string{"CAMVEC_VECTOR_SIZE"},
		},
	}
}

func newMetadataClient(c *cli.Context) (*cctv.Client, error) {
	tokens := cctv.NewTokenSource(c.String("cctv-url"), cctv.Credentials{
		AuthorizeCode: c.String("authorize-code"),
		UserAuth:      c.String("user-auth"),
		ClientID:      c.String("client-id"),
	})
	return cctv.NewClient(c.String("cctv-url"), tokens)
}

func newEmbedder(c *cli.Context) (ai.Embedder, error) {
	config := ai.NewConfig(ai.WithHost(c.String("ai-url")))
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return vision.NewEmbedder(config)
}

func newRepository(c *cli.Context) (storage.PointRepository, error) {
	return qdrant.NewRepository(qdrant.Config{
		Addr:       c.String("qdrant-addr"),
		APIKey:     c.String("qdrant-api-key"),
		Collection: c.String("collection"),
	})
}

func ingestCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newMetadataClient(c)
	if err != nil {
		return fmt.Errorf("failed to create metadata client: %w", err)
	}

	embedder, err := newEmbedder(c)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	repo, err := newRepository(c)
	if err != nil {
		return fmt.Errorf("failed to connect to qdrant: %w", err)
	}
	defer repo.Close()

	if err := repo.EnsureCollection(ctx, c.Uint64("vector-size")); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}
	if err := repo.EnsureDatetimeIndex(ctx); err != nil {
		return fmt.Errorf("failed to ensure datetime index: %w", err)
	}

	opts := []ingestion.Option{
		ingestion.WithFetchLimit(c.Int("limit")),
		ingestion.WithLookbackDays(c.Int("days")),
	}
	if size := c.Int("pool-size"); size > 0 {
		opts = append(opts, ingestion.WithPoolSize(size))
	}

	var journal storage.RunJournal
	if path := c.String("journal"); path != "" {
		journal, err = badger.NewJournal(path, false)
		if err != nil {
			return fmt.Errorf("failed to open run journal: %w", err)
		}
		defer journal.Close()
		opts = append(opts, ingestion.WithJournal(journal))
	}

	pipeline, err := ingestion.NewPipeline(client, embedder, repo, c.String("camera"), opts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	if c.Bool("once") {
		report, err := pipeline.Run(ctx)
		if err != nil {
			return fmt.Errorf("ingestion run failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "fetched=%d embedded=%d upserted=%d skipped=%d\n",
			report.Fetched, report.Embedded, report.Upserted, report.Skipped)
		return nil
	}

	scheduler := ingestion.NewScheduler(pipeline,
		ingestion.WithPeriod(time.Duration(c.Int("every"))*time.Minute))
	scheduler.Start(ctx)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query text is required")
	}

	embedder, err := newEmbedder(c)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	repo, err := newRepository(c)
	if err != nil {
		return fmt.Errorf("failed to connect to qdrant: %w", err)
	}
	defer repo.Close()

	searcher, err := search.NewSearcher(embedder, repo)
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	hits, err := searcher.Search(ctx, search.Query{
		Text: query,
		TopK: c.Uint64("top-k"),
		From: c.String("from"),
		To:   c.String("to"),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(hits) == 0 {
		fmt.Println("no results")
		return nil
	}
	for _, hit := range hits {
		fmt.Printf("%.4f  %s  %s  (id %s)\n", hit.Score, hit.Datetime, hit.Filename, hit.ID)
	}
	return nil
}

func camerasCommand(c *cli.Context) error {
	ctx := context.Background()

	client, err := newMetadataClient(c)
	if err != nil {
		return fmt.Errorf("failed to create metadata client: %w", err)
	}

	cameras, err := client.ListCameras(ctx)
	if err != nil {
		return fmt.Errorf("failed to list cameras: %w", err)
	}

	for _, camera := range cameras {
		fmt.Println(camera)
	}
	return nil
}

func runsCommand(c *cli.Context) error {
	ctx := context.Background()

	journal, err := badger.NewJournal(c.String("journal"), false)
	if err != nil {
		return fmt.Errorf("failed to open run journal: %w", err)
	}
	defer journal.Close()

	reports, err := journal.Recent(ctx, c.Int("count"))
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	if len(reports) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}
	for _, report := range reports {
		status := "ok"
		if report.Err != "" {
			status = "failed: " + report.Err
		}
		fmt.Printf("%s  fetched=%d embedded=%d upserted=%d skipped=%d  %s\n",
			report.StartedAt.Format(time.RFC3339), report.Fetched,
			report.Embedded, report.Upserted, report.Skipped, status)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

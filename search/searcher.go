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

package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/camvec/ai"
	"github.com/poiesic/camvec/core"
	"github.com/poiesic/camvec/filename"
	"github.com/poiesic/camvec/storage"
)

// DefaultTopK is the result cap used when the caller passes zero.
const DefaultTopK = 5

// Query describes one search request. From and To are optional RFC3339
// bounds; empty strings leave that side of the range open.
type Query struct {
	Text string
	TopK uint64
	From string
	To   string
}

// Searcher embeds a text query and runs it against the vector store.
type Searcher struct {
	embedder ai.Embedder
	points   storage.PointSearcher
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "searcher")
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(embedder ai.Embedder, points storage.PointSearcher, opts ...Option) (*Searcher, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if points == nil {
		return nil, ErrSearcherRequired
	}

	s := &Searcher{
		embedder: embedder,
		points:   points,
		logger:   slog.Default().With("component", "searcher"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search embeds the query text and returns the nearest stored points.
// Malformed date bounds fail before any network call.
func (s *Searcher) Search(ctx context.Context, query Query) ([]*core.SearchHit, error) {
	if strings.TrimSpace(query.Text) == "" {
		return nil, ErrEmptyQuery
	}

	filter, err := parseRange(query.From, query.To)
	if err != nil {
		return nil, err
	}

	topK := query.TopK
	if topK == 0 {
		topK = DefaultTopK
	}

	vector, err := s.embedder.EmbedText(ctx, query.Text)
	if err != nil {
		s.logger.Error("failed to embed query", "err", err)
		return nil, err
	}

	hits, err := s.points.Search(ctx, vector, topK, filter)
	if err != nil {
		s.logger.Error("vector search failed", "err", err)
		return nil, err
	}

	s.logger.Debug("search complete", "hits", len(hits), "top_k", topK)
	return hits, nil
}

// parseRange converts optional RFC3339 bounds into a storage filter.
// Returns nil when both sides are open.
func parseRange(from, to string) (*storage.DatetimeFilter, error) {
	if from == "" && to == "" {
		return nil, nil
	}

	filter := &storage.DatetimeFilter{}
	if from != "" {
		start, err := filename.ParseRFC3339(from)
		if err != nil {
			return nil, fmt.Errorf("%w: start %q", ErrBadDateRange, from)
		}
		filter.Start = start
	}
	if to != "" {
		end, err := filename.ParseRFC3339(to)
		if err != nil {
			return nil, fmt.Errorf("%w: end %q", ErrBadDateRange, to)
		}
		filter.End = end
	}
	return filter, nil
}

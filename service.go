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

package camvec

import (
	"log/slog"

	"github.com/poiesic/camvec/ai"
	"github.com/poiesic/camvec/ai/vision"
	"github.com/poiesic/camvec/cctv"
	"github.com/poiesic/camvec/ingestion"
	"github.com/poiesic/camvec/search"
	"github.com/poiesic/camvec/storage"
	"github.com/poiesic/camvec/storage/qdrant"
)

// Service wires the metadata client, embedder and vector store for
// library embedders. The CLI does its own wiring; this facade exists
// for programs that embed camvec directly.
type Service struct {
	client   *cctv.Client
	embedder ai.Embedder
	repo     storage.PointRepository
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig *ai.Config
}

// WithAIConfig overrides the embedding service configuration.
func WithAIConfig(config *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// NewService connects all backends. cctvURL is the metadata service
// base URL; qdrantCfg points at the vector store.
func NewService(cctvURL string, creds cctv.Credentials, qdrantCfg qdrant.Config, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	tokens := cctv.NewTokenSource(cctvURL, creds)
	client, err := cctv.NewClient(cctvURL, tokens)
	if err != nil {
		return nil, err
	}

	embedder, err := vision.NewEmbedder(options.aiConfig)
	if err != nil {
		return nil, err
	}

	repo, err := qdrant.NewRepository(qdrantCfg)
	if err != nil {
		return nil, err
	}

	return &Service{
		client:   client,
		embedder: embedder,
		repo:     repo,
		logger:   slog.Default(),
	}, nil
}

// Close closes the vector store connection.
func (s *Service) Close() error {
	if err := s.repo.Close(); err != nil {
		s.logger.Error("error closing vector store", "err", err)
		return err
	}
	return nil
}

// MetadataClient returns the CCTV metadata client.
func (s *Service) MetadataClient() *cctv.Client {
	return s.client
}

// Repository returns the vector store repository.
func (s *Service) Repository() storage.PointRepository {
	return s.repo
}

// NewIngestionPipeline builds a pipeline for one camera over the
// service's backends.
func (s *Service) NewIngestionPipeline(cameraID string, opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(s.client, s.embedder, s.repo, cameraID, opts...)
}

// NewSearcher builds a text searcher over the service's backends.
func (s *Service) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(s.embedder, s.repo, opts...)
}

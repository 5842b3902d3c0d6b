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


package qdrant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/camvec/core"
	"github.com/poiesic/camvec/storage"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// datetimeField is the payload attribute carrying the range index.
const datetimeField = "datetime"

// Config holds the connection settings for a Qdrant instance.
type Config struct {
	// Addr is the gRPC address, e.g. "localhost:6334".
	Addr string

	// APIKey is attached to every call when non-empty.
	APIKey string

	// Collection is the collection all operations target.
	Collection string
}

// Repository implements storage.PointRepository over gRPC.
type Repository struct {
	conn        *grpc.ClientConn
	collections qdrant.CollectionsClient
	points      qdrant.PointsClient
	collection  string
	logger      *slog.Logger
}

var _ storage.PointRepository = (*Repository)(nil)

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// apiKeyInterceptor attaches the api-key header to every unary call.
func apiKeyInterceptor(key string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any,
		cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", key)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// NewRepository connects to Qdrant and returns the repository as the
// storage.PointRepository interface to enforce abstraction.
func NewRepository(cfg Config, opts ...Option) (storage.PointRepository, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if cfg.APIKey != "" {
		dialOpts = append(dialOpts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
	}

	conn, err := grpc.NewClient(cfg.Addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to %s: %w", storage.ErrCollectionUnavailable, cfg.Addr, err)
	}

	r := &Repository{
		conn:        conn,
		collections: qdrant.NewCollectionsClient(conn),
		points:      qdrant.NewPointsClient(conn),
		collection:  cfg.Collection,
		logger:      slog.Default().With("component", "qdrant", "collection", cfg.Collection),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// EnsureCollection creates the collection with cosine distance if it
// does not exist yet.
func (r *Repository) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	_, err := r.collections.Get(ctx, &qdrant.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err == nil {
		r.logger.Info("collection already exists")
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.NotFound {
		return fmt.Errorf("%w: checking collection: %w", storage.ErrCollectionUnavailable, err)
	}

	r.logger.Info("creating collection", "vector_size", vectorSize)
	_, err = r.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     vectorSize,
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: creating collection: %w", storage.ErrCollectionUnavailable, err)
	}
	return nil
}

// EnsureDatetimeIndex creates the datetime field index backing range
// filters. Qdrant treats re-creation as a no-op.
func (r *Repository) EnsureDatetimeIndex(ctx context.Context) error {
	wait := true
	_, err := r.points.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: r.collection,
		Wait:           &wait,
		FieldName:      datetimeField,
		FieldType:      qdrant.FieldType_FieldTypeDatetime.Enum(),
	})
	if err != nil {
		return fmt.Errorf("%w: creating datetime index: %w", storage.ErrCollectionUnavailable, err)
	}
	return nil
}

// UpsertPoint writes one point, waiting for the operation to apply so
// a reported success means the point is visible.
func (r *Repository) UpsertPoint(ctx context.Context, point *core.VectorPoint) error {
	if err := point.Validate(); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrUpsertFailed, err)
	}

	payload, err := toQdrantPayload(point.Payload)
	if err != nil {
		return err
	}

	wait := true
	_, err = r.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: r.collection,
		Wait:           &wait,
		Points: []*qdrant.PointStruct{{
			Id:      &qdrant.PointId{PointIdOptions: &qdrant.PointId_Num{Num: point.ID}},
			Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: point.Vector}}},
			Payload: payload,
		}},
	})
	if err != nil {
		return fmt.Errorf("%w: point %d: %w", storage.ErrUpsertFailed, point.ID, err)
	}

	r.logger.Debug("upserted point", "id", point.ID)
	return nil
}

// Search runs a similarity query, optionally restricted to a datetime
// range over the indexed field.
func (r *Repository) Search(ctx context.Context, vector []float32, limit uint64, filter *storage.DatetimeFilter) ([]*core.SearchHit, error) {
	req := &qdrant.SearchPoints{
		CollectionName: r.collection,
		Vector:         vector,
		Limit:          limit,
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
		},
	}

	if !filter.Empty() {
		req.Filter = datetimeRangeFilter(filter)
	}

	resp, err := r.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSearchFailed, err)
	}

	hits := make([]*core.SearchHit, len(resp.Result))
	for i, point := range resp.Result {
		hits[i] = &core.SearchHit{
			ID:       pointIDString(point.Id),
			Filename: extractString(point.Payload, "filename"),
			Datetime: extractString(point.Payload, datetimeField),
			Score:    point.Score,
		}
	}
	return hits, nil
}

// datetimeRangeFilter builds the (start, end] condition the search
// side uses, matching how points canonicalize their datetime values.
func datetimeRangeFilter(filter *storage.DatetimeFilter) *qdrant.Filter {
	dr := &qdrant.DatetimeRange{}
	if !filter.Start.IsZero() {
		dr.Gt = timestamppb.New(filter.Start)
	}
	if !filter.End.IsZero() {
		dr.Lte = timestamppb.New(filter.End)
	}

	return &qdrant.Filter{
		Must: []*qdrant.Condition{{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key:           datetimeField,
					DatetimeRange: dr,
				},
			},
		}},
	}
}

// Close closes the gRPC connection.
func (r *Repository) Close() error {
	return r.conn.Close()
}

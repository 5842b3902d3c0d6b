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

package badger

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/camvec/core"
	"github.com/poiesic/camvec/storage"
)

const runKeyPrefix = "run:"

// Journal records completed ingestion runs in BadgerDB. Entries are
// keyed by a monotonic sequence so reverse iteration yields the most
// recent runs first. The pipeline only appends; reads serve operators
// inspecting past runs.
type Journal struct {
	backend *Backend
	seq     *badger.Sequence
	logger  *slog.Logger
}

var _ storage.RunJournal = (*Journal)(nil)

// NewJournal opens a run journal backed by the database at path. When
// inMemory is true the database lives in memory and path is ignored.
func NewJournal(path string, inMemory bool) (*Journal, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrCollectionUnavailable, err)
	}

	seq, err := backend.GetSequence("runseq")
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("%w: %v", storage.ErrCollectionUnavailable, err)
	}

	return &Journal{
		backend: backend,
		seq:     seq,
		logger:  slog.Default().With("component", "run_journal"),
	}, nil
}

func runKey(id uint64) []byte {
	key := make([]byte, len(runKeyPrefix)+8)
	copy(key, runKeyPrefix)
	binary.BigEndian.PutUint64(key[len(runKeyPrefix):], id)
	return key
}

// Append stores a run report under the next sequence number.
func (j *Journal) Append(ctx context.Context, report *core.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id, err := j.seq.Next()
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrSerializationFailed, err)
	}

	data := storage.MarshalRunReport(report)

	err = j.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(runKey(id), data); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrSerializationFailed, err)
	}

	j.logger.Debug("run recorded", "run_id", id, "upserted", report.Upserted)
	return nil
}

// Recent returns up to limit reports, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]*core.RunReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	reports := make([]*core.RunReport, 0, limit)
	err := j.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(runKeyPrefix)
		it := tx.NewIterator(opts)
		defer it.Close()

		// Seek past the highest possible run key so reverse iteration
		// starts at the newest entry.
		seekKey := runKey(^uint64(0))
		for it.Seek(seekKey); it.ValidForPrefix([]byte(runKeyPrefix)); it.Next() {
			if len(reports) >= limit {
				break
			}
			var report *core.RunReport
			err := it.Item().Value(func(val []byte) error {
				var err error
				report, err = storage.UnmarshalRunReport(val)
				return err
			})
			if err != nil {
				return err
			}
			reports = append(reports, report)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return reports, nil
}

// Close releases the sequence and closes the underlying database.
func (j *Journal) Close() error {
	if err := j.seq.Release(); err != nil {
		j.logger.Warn("failed to release run sequence", "error", err)
	}
	return j.backend.Close()
}

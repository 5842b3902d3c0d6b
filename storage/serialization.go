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


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/camvec/core"
)

// runReportSer is a hand-written MUS serializer for core.RunReport.
// One struct does not warrant code generation. Timestamps are stored
// as Unix microseconds.
type runReportSer struct{}

// RunReportMUS serializes run reports for the journal backend.
var RunReportMUS = runReportSer{}

func (runReportSer) Marshal(r core.RunReport, bs []byte) (n int) {
	n = varint.Int64.Marshal(r.StartedAt.UnixMicro(), bs)
	n += varint.Int64.Marshal(r.FinishedAt.UnixMicro(), bs[n:])
	n += varint.Int.Marshal(r.Fetched, bs[n:])
	n += varint.Int.Marshal(r.Embedded, bs[n:])
	n += varint.Int.Marshal(r.Upserted, bs[n:])
	n += varint.Int.Marshal(r.Skipped, bs[n:])
	n += ord.String.Marshal(r.Err, bs[n:])
	return
}

func (runReportSer) Unmarshal(bs []byte) (r core.RunReport, n int, err error) {
	var n1 int
	var started, finished int64

	started, n, err = varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	finished, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.Fetched, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.Embedded, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.Upserted, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.Skipped, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.Err, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	r.StartedAt = time.UnixMicro(started).UTC()
	r.FinishedAt = time.UnixMicro(finished).UTC()
	return
}

func (runReportSer) Size(r core.RunReport) (size int) {
	size = varint.Int64.Size(r.StartedAt.UnixMicro())
	size += varint.Int64.Size(r.FinishedAt.UnixMicro())
	size += varint.Int.Size(r.Fetched)
	size += varint.Int.Size(r.Embedded)
	size += varint.Int.Size(r.Upserted)
	size += varint.Int.Size(r.Skipped)
	size += ord.String.Size(r.Err)
	return
}

// MarshalRunReport serializes a RunReport to bytes.
func MarshalRunReport(report *core.RunReport) []byte {
	buf := make([]byte, RunReportMUS.Size(*report))
	RunReportMUS.Marshal(*report, buf)
	return buf
}

// UnmarshalRunReport deserializes a RunReport from bytes.
func UnmarshalRunReport(data []byte) (*core.RunReport, error) {
	report, _, err := RunReportMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &report, nil
}

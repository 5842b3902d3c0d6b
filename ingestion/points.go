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

package ingestion

import (
	"fmt"
	"time"

	"github.com/poiesic/camvec/core"
	"github.com/poiesic/camvec/filename"
)

// BuildPoint assembles the vector-store point for a descriptor and its
// embedding. The point id is the source-assigned descriptor id, so
// re-ingesting the same record overwrites rather than duplicates.
//
// The payload datetime is the canonical RFC3339 form of the
// descriptor's date and time; when the metadata record carries neither,
// they are recovered from the filename. created_at falls back to now
// when the source omitted it.
func BuildPoint(desc *core.ImageDescriptor, vector []float32, now time.Time) (*core.VectorPoint, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: descriptor %d", core.ErrEmptyVector, desc.ID)
	}

	date, tod := desc.Date, desc.Time
	if date == "" || tod == "" {
		parsed, err := filename.Parse(desc.Filename)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingDatetime, err)
		}
		date, tod = parsed.Date, filename.NormalizeTime(parsed.Time)
		// The store's datetime index only accepts RFC3339; a filename
		// segment that cannot be normalized fails the item, not the run.
		if _, err := filename.ParseRFC3339(filename.APIDatetimeToRFC3339(date, tod)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingDatetime, err)
		}
	}

	createdAt := desc.CreatedAt
	if createdAt == "" {
		createdAt = now.UTC().Format(time.RFC3339)
	}

	builder := core.NewPayloadBuilder().
		String("image", desc.FilePath).
		String("filename", desc.Filename).
		String("camera_id", desc.CameraID).
		String("datetime", filename.APIDatetimeToRFC3339(date, tod)).
		Integer("frame", int64(desc.Frame)).
		Integer("vehicle_type", int64(desc.VehicleType)).
		Integer("yolo_id", int64(desc.YoloID)).
		String("created_at", createdAt)

	if desc.Label != nil {
		builder.String("vehicle_class", desc.Label.ClassName).
			Double("confidence", float64(desc.Label.Confidence))
	}

	return &core.VectorPoint{
		ID:      desc.ID,
		Vector:  vector,
		Payload: builder.Build(),
	}, nil
}

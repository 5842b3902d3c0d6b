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


package core

import "fmt"

// Validate checks that a descriptor carries the fields the pipeline
// depends on. The metadata API is not fully trusted; a descriptor that
// fails validation is skipped by the caller, never fatal to a run.
func (d *ImageDescriptor) Validate() error {
	if d.FilePath == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDescriptor, ErrEmptyFilePath)
	}
	if d.CameraID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDescriptor, ErrEmptyCameraID)
	}
	return nil
}

// Validate checks that a point is writable to the vector store.
func (p *VectorPoint) Validate() error {
	if len(p.Vector) == 0 {
		return ErrEmptyVector
	}
	for key, value := range p.Payload {
		switch value.(type) {
		case string, int64, float64:
		default:
			return fmt.Errorf("%w: key %q holds %T", ErrInvalidPayloadValue, key, value)
		}
	}
	return nil
}

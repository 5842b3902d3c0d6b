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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDescriptor indicates an ImageDescriptor failed validation.
	ErrInvalidDescriptor = errors.New("invalid image descriptor")

	// ErrEmptyFilePath indicates a descriptor has no file path to
	// correlate embedding results against.
	ErrEmptyFilePath = errors.New("file path cannot be empty")

	// ErrEmptyCameraID indicates a descriptor has no camera id.
	ErrEmptyCameraID = errors.New("camera id cannot be empty")

	// ErrEmptyVector indicates a VectorPoint carries no embedding.
	ErrEmptyVector = errors.New("vector cannot be empty")

	// ErrInvalidPayloadValue indicates a payload value is not one of
	// the supported kinds (string, int64, float64).
	ErrInvalidPayloadValue = errors.New("unsupported payload value kind")
)

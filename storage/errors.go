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

import "errors"

var (
	// ErrUpsertFailed indicates the vector store rejected a point write.
	ErrUpsertFailed = errors.New("point upsert failed")

	// ErrSearchFailed indicates a similarity search could not complete.
	ErrSearchFailed = errors.New("point search failed")

	// ErrCollectionUnavailable indicates the collection could not be
	// created or inspected.
	ErrCollectionUnavailable = errors.New("collection unavailable")

	// ErrStorageClosed indicates the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSerializationFailed indicates a journal value could not be
	// encoded or decoded.
	ErrSerializationFailed = errors.New("serialization failed")
)

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


// Package storage provides the storage abstraction layer for camvec.
//
// Two concerns live behind it: the vector store holding embedded image
// points (implemented by the qdrant subpackage) and the local run
// journal recording pipeline outcomes for operators (implemented by
// the badger subpackage).
//
// # Constructor Return Type Pattern
//
// Public constructors return the interfaces defined here rather than
// concrete types, so consumers cannot couple to a specific backend and
// tests can substitute doubles without modification.
//
// # Thread Safety
//
// All implementations must be thread-safe; the ingestion pipeline
// upserts points from a worker pool.
package storage

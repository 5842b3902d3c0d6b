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


// Package cctv is the client for the remote CCTV metadata service.
//
// The service authenticates with short-lived bearer tokens issued by
// its own token endpoint. TokenSource caches one token behind a mutex
// and refreshes it synchronously when it lapses; concurrent callers
// serialize on the cache so the issuer sees at most one refresh.
//
// Client wraps the two metadata operations the ingestion pipeline
// needs: fetching a bounded window of training images for one camera,
// and listing the camera fleet. Responses carry an application-level
// success flag separate from the HTTP status; a 2xx response that
// reports failure is still an error.
package cctv

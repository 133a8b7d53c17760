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


// Package storage provides the storage abstraction layer for motif.
//
// This package defines repository interfaces that decouple storage
// implementation from the indexing and search logic, so the embedded BadgerDB
// store and the PostgreSQL feature store can be used interchangeably where
// they overlap.
//
// # Architecture
//
//   - Repository: operations shared by every repository
//   - SongRepository: indexed songs, title lookup and paging
//   - SimilarityFinder: similar songs by title
//   - CheckpointRepository: progress of resumable batch jobs
//   - FeatureSink: mirror of indexed songs into a remote store
//
// # Usage
//
//	songs, checkpoints, backend, err := badger.NewRepositories("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	defer songs.Close()
//
// Use in tests with in-memory storage:
//
//	songs, checkpoints, backend, err := badger.NewMemoryRepositories()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage

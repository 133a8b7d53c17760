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

import "github.com/poiesic/motif/storage"

// NewRepositories opens the database at path and creates song and
// checkpoint repositories on it. Caller must close the backend when done.
func NewRepositories(path string) (storage.SongRepository, storage.CheckpointRepository, *Backend, error) {
	return newRepositories(path, false)
}

// NewMemoryRepositories creates in-memory song and checkpoint repositories
// for testing. Caller must close the backend when done.
func NewMemoryRepositories() (storage.SongRepository, storage.CheckpointRepository, *Backend, error) {
	return newRepositories("", true)
}

func newRepositories(path string, inMemory bool) (storage.SongRepository, storage.CheckpointRepository, *Backend, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, nil, nil, err
	}
	return NewSongRepository(backend), NewCheckpointRepository(backend), backend, nil
}

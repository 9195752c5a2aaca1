// Copyright 2026 Poiesic Systems
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


// Package storage provides the persistence abstraction for fitted vector spaces.
//
// A vector space is the expensive output of a build: the vocabulary, the term
// weights and one sparse row per course. Persisting it lets a process skip the
// fit on startup when the catalog has not changed.
//
// # Architecture
//
//   - SpaceRepository: save, load and delete the single current vector space
//   - serialization.go: mus-go encoders for the space header, rows and manifest
//
// The badger subpackage is the production implementation:
//
//	repo, err := badger.NewRepository("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// Use in tests with in-memory storage:
//
//	repo, err := badger.NewMemoryRepository()
//
// # Thread Safety
//
// All repository implementations must be thread-safe. A reader observes either
// the previously saved space or the new one, never a mixture of both.
package storage

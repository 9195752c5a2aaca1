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

// Package cache owns the fitted vector space of a course corpus.
//
// A Cache loads the corpus from a corpus.Source, restores a previously
// persisted space from a storage.SpaceRepository when it still matches the
// corpus and build configuration, and otherwise fits a new space and persists
// it.
//
// # Publication
//
// The current Space is held behind an atomic pointer. A Space is never
// modified after it is published; rebuilds construct a complete replacement
// and swap it in, so readers never block and never observe a half-built space.
// Rebuilds themselves are serialized.
//
// # Staleness
//
// A persisted space is only reused when its fingerprint, build configuration
// and course codes agree with the freshly loaded corpus. Anything else,
// including a corrupt blob, is treated as a cache miss and the space is fitted
// again. Mismatches are logged at debug level and never surface to callers.
package cache

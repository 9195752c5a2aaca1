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

// Package search ranks courses against free-text queries and against other
// courses.
//
// Rank is the pure scoring core: cosine similarity of a query vector against
// every course vector, clamped to [0, 1], sorted by score with ties broken by
// corpus order. Searcher resolves ranked positions to course records using the
// current vector space of a SpaceProvider, typically a *cache.Cache.
package search

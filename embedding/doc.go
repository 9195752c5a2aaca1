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

// Package embedding exposes a fitted course vector space through the
// langchaingo embeddings.Embedder interface.
//
// The vectors are the same TF-IDF vectors used for ranking, converted to
// float32. They are deterministic and need no remote service, which makes the
// embedder usable as a drop-in for langchaingo vector stores in tests and
// offline tooling. Vector dimensions follow the vocabulary of the space the
// embedder was asked for, so vectors from before and after a rebuild are not
// comparable.
package embedding

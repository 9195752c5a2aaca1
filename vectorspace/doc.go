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

// Package vectorspace implements a TF-IDF vector space in two explicit phases.
//
// Fit learns a frozen vocabulary and smoothed IDF weights from a document set
// and returns an immutable *Model:
//
//	model, err := vectorspace.Fit(texts, core.DefaultBuildConfig())
//
// Encode projects any text into that space. Corpus documents and live queries
// go through exactly the same tokenizer, weighting and L2 normalization, so
// they are always comparable:
//
//	matrix, err := model.EncodeAll(ctx, texts)
//	q := model.Encode("neural networks and regression")
//
// A Model is safe for concurrent use. Fitting is deterministic: the same texts
// and configuration always produce bit-identical vocabularies, weights and vectors.
package vectorspace

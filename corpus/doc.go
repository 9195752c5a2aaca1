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

// Package corpus turns raw course records into the documents that get vectorized.
//
// A Source supplies an ordered list of core.CourseRecord values. Load validates
// them and produces one core.Document per record, keeping the input order so a
// document's Index always points back at the record it came from.
//
// Three sources are provided:
//   - StaticSource: an in-memory slice, mostly for tests and embedding
//   - CSVSource: a code,title,credits,description file as written by the scraper
//   - SQLiteSource: a courses table in a SQLite catalog
//
// Sources only read; they do not clean or repair text beyond what Load does.
package corpus

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

package core

import "errors"

var (
	// ErrMalformedRecord indicates a course record lacks a required identifying field.
	ErrMalformedRecord = errors.New("malformed course record")

	// ErrEmptyCode indicates the Code field is blank.
	ErrEmptyCode = errors.New("course code cannot be empty")

	// ErrDuplicateCode indicates two records share the same Code.
	ErrDuplicateCode = errors.New("duplicate course code")

	// ErrUnknownCourse indicates a lookup referenced a course code not in the corpus.
	ErrUnknownCourse = errors.New("unknown course")

	// ErrCacheMismatch indicates a persisted vector space does not match the current
	// corpus or build configuration. It never leaves the cache package.
	ErrCacheMismatch = errors.New("vector cache mismatch")

	// ErrInvalidConfig indicates a BuildConfig failed validation.
	ErrInvalidConfig = errors.New("invalid build config")
)

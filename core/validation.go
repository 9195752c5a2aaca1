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

import (
	"fmt"
	"strings"
)

// ValidateCourseRecord validates a CourseRecord according to domain rules.
//
// Validation rules:
//   - Code must not be blank
//
// NOT validated:
//   - Description (a missing description is treated as empty text)
//   - Title and Credits (informational only)
func ValidateCourseRecord(record *CourseRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrMalformedRecord)
	}

	if strings.TrimSpace(record.Code) == "" {
		return fmt.Errorf("%w: %w", ErrMalformedRecord, ErrEmptyCode)
	}

	return nil
}

// Validate checks that the build configuration describes a usable vector space.
func (c BuildConfig) Validate() error {
	if c.NgramMin < 1 {
		return fmt.Errorf("%w: ngram min must be at least 1, got %d", ErrInvalidConfig, c.NgramMin)
	}
	if c.NgramMax < c.NgramMin {
		return fmt.Errorf("%w: ngram max %d is below ngram min %d", ErrInvalidConfig, c.NgramMax, c.NgramMin)
	}
	if c.MaxFeatures < 1 {
		return fmt.Errorf("%w: max features must be at least 1, got %d", ErrInvalidConfig, c.MaxFeatures)
	}
	if c.MinDF < 1 {
		return fmt.Errorf("%w: min df must be at least 1, got %d", ErrInvalidConfig, c.MinDF)
	}
	if !(c.MaxDF > 0 && c.MaxDF <= 1) {
		return fmt.Errorf("%w: max df must be in (0, 1], got %g", ErrInvalidConfig, c.MaxDF)
	}
	return nil
}

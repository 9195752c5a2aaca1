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

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/poiesic/coursematch/storage"
)

// SaveFailure names the reason a space could not be saved.
type SaveFailure string

const (
	FailureNone     SaveFailure = ""
	FailureConflict SaveFailure = "conflict"
	FailureTooLarge SaveFailure = "too_large"
	FailureClosed   SaveFailure = "storage_closed"
	FailureCanceled SaveFailure = "canceled"
	FailureStorage  SaveFailure = "storage_error"
)

// ClassifySaveError maps an error from SpaceRepository.SaveSpace onto a
// SaveFailure.
func ClassifySaveError(err error) SaveFailure {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FailureCanceled
	case errors.Is(err, storage.ErrTransactionFailed):
		return FailureConflict
	case errors.Is(err, storage.ErrSpaceTooLarge):
		return FailureTooLarge
	case errors.Is(err, storage.ErrStorageClosed):
		return FailureClosed
	default:
		return FailureStorage
	}
}

// Retryable reports whether saving again may succeed. Only conflicts with
// a concurrent writer qualify.
func (f SaveFailure) Retryable() bool {
	return f == FailureConflict
}

// PersistPolicy controls how a fitted space is saved.
type PersistPolicy struct {
	Attempts  int           // total save attempts, at least 1
	BaseDelay time.Duration // wait before the second attempt, doubled after each conflict
	MaxDelay  time.Duration // upper bound on the wait, 0 for none
}

// DefaultPersistPolicy returns the policy used when none is configured.
func DefaultPersistPolicy() PersistPolicy {
	return PersistPolicy{
		Attempts:  3,
		BaseDelay: 50 * time.Millisecond,
		MaxDelay:  time.Second,
	}
}

func (p PersistPolicy) Validate() error {
	if p.Attempts < 1 {
		return fmt.Errorf("%w: attempts must be at least 1, got %d", ErrInvalidPersistPolicy, p.Attempts)
	}
	if p.BaseDelay < 0 || p.MaxDelay < 0 {
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidPersistPolicy)
	}
	return nil
}

// backoff returns the wait before the given attempt, counting from 2.
func (p PersistPolicy) backoff(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 2; i < attempt; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			break
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// save calls op until it succeeds, fails for a reason that is not
// retryable, or the attempts run out. It returns the number of attempts made.
func (p PersistPolicy) save(ctx context.Context, op func() error) (int, error) {
	var err error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if attempt > 1 {
			timer := time.NewTimer(p.backoff(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return attempt - 1, ctx.Err()
			case <-timer.C:
			}
		}
		if err = op(); err == nil {
			return attempt, nil
		}
		if !ClassifySaveError(err).Retryable() {
			return attempt, err
		}
	}
	return p.Attempts, err
}

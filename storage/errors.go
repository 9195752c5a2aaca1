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


package storage

import "errors"

var (
	// ErrNotFound indicates that no vector space has been saved.
	ErrNotFound = errors.New("record not found")

	// ErrTransactionFailed indicates that a transaction failed.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrSpaceTooLarge indicates that a vector space does not fit in one transaction.
	ErrSpaceTooLarge = errors.New("vector space too large for one transaction")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrTruncatedData indicates that data was truncated during reading.
	ErrTruncatedData = errors.New("truncated data")
)

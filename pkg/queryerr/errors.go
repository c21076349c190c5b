/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package queryerr defines the error taxonomy surfaced by the query
// compiler and executor: InvalidQuery, Forbidden, StorageUnavailable,
// StorageError, and Internal. The compiler and engine packages wrap one of
// these sentinels rather than returning a bare error, so callers can
// classify failures with errors.Is without inspecting message text;
// pkg/db and pkg/config return their own errors.
package queryerr

import "errors"

var (
	// ErrInvalidQuery covers shape/range violations in the request itself:
	// negative page size, an unknown filter variant, a nil root entity in
	// a relation filter. Non-retryable.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrForbidden covers scoping that cannot be satisfied, e.g. a
	// customer-scoped caller with no customer id.
	ErrForbidden = errors.New("forbidden")

	// ErrStorageUnavailable covers transient connection or timeout
	// failures; the caller may retry.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrStorageError covers non-transient backend failures.
	ErrStorageError = errors.New("storage error")

	// ErrInternal marks a coding-bug invariant violation that should never
	// reach production.
	ErrInternal = errors.New("internal error")
)

// Code is the stable machine-readable classification attached to an
// error, independent of its human-readable message.
type Code string

const (
	CodeInvalidQuery        Code = "INVALID_QUERY"
	CodeForbidden           Code = "FORBIDDEN"
	CodeStorageUnavailable  Code = "STORAGE_UNAVAILABLE"
	CodeStorageError        Code = "STORAGE_ERROR"
	CodeInternal            Code = "INTERNAL"
)

// CodeOf classifies err against the taxonomy sentinels, defaulting to
// CodeInternal for anything it doesn't recognize so an unclassified error
// never silently presents as a 4xx.
func CodeOf(err error) Code {
	switch {
	case errors.Is(err, ErrInvalidQuery):
		return CodeInvalidQuery
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrStorageUnavailable):
		return CodeStorageUnavailable
	case errors.Is(err, ErrStorageError):
		return CodeStorageError
	default:
		return CodeInternal
	}
}

// Package common defines sentinel errors shared by the store, index, listing
// and access layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors for inputs that cannot be safely defaulted.
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrIndexEntryExists signals an attempt to index an id that already has a
	// mirror row. It is a programming error and is never retried.
	ErrIndexEntryExists = errors.New("index entry already exists")

	// ErrStoreUnavailable marks failures of the store itself (connection, begin,
	// commit). Batches abort on it.
	ErrStoreUnavailable = errors.New("store unavailable")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

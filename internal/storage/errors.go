package storage

import "errors"

// Sentinel errors for the storage layer. Validation failures carry
// models.ErrValidation instead; they are detected before any write.
var (
	// ErrNotFound reports that the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCommit reports that a batch of changes could not be applied.
	// The transaction was rolled back, so no partial effects remain and
	// the caller may retry the whole batch.
	ErrCommit = errors.New("commit failed")
)

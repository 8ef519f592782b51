package scoringdb

import "errors"

// Sentinel errors for the repository layer.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmoji indicates an active emoji already exists for the
	// (guild, scope, code) triple.
	ErrDuplicateEmoji = errors.New("active emoji already configured for this code")
)

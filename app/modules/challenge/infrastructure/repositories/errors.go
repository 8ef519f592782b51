package challengedb

import "errors"

// Sentinel errors for the repository layer.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateSemester indicates a challenge already exists for the
	// (guild, semester) pair.
	ErrDuplicateSemester = errors.New("challenge already exists for this semester")

	// ErrNoRowsAffected indicates an UPDATE matched no rows.
	ErrNoRowsAffected = errors.New("no rows affected")
)

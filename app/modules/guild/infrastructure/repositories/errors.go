package guilddb

import "errors"

// Sentinel errors for the repository layer.
var (
	// ErrNotFound indicates the requested guild does not exist.
	ErrNotFound = errors.New("guild not found")

	// ErrAlreadyExists indicates a guild row already exists for the ID.
	ErrAlreadyExists = errors.New("guild already exists")
)

package domain

import "errors"

// Sentinel errors shared by the store and the ledger. Callers wrap them with
// context and the API layer matches them with errors.Is.
var (
	ErrNotFound = errors.New("not found")         // Row absent or not owned by the caller
	ErrConflict = errors.New("already exists")    // Unique email violated
	ErrNoFields = errors.New("no fields to update") // Empty patch
)

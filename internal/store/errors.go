package store

import "errors"

// Record store error sentinels.
var (
	// ErrRecordNotFound is returned when no record exists at a locator.
	ErrRecordNotFound = errors.New("record not found")

	// ErrConcurrentWrite is returned when a compare-and-swap update finds
	// the record's integrity token no longer matches the one read earlier.
	ErrConcurrentWrite = errors.New("record was modified concurrently")
)

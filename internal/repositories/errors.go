package repositories

import "errors"

var (
	// ErrStaleVersion is returned when an update posts a version older
	// than the stored row; the form is re-rendered with a banner and no
	// write is performed.
	ErrStaleVersion = errors.New("stale version")

	ErrNotFound = errors.New("not found")
)

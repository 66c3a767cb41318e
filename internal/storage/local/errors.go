package local

import "errors"

var (
	// ErrCorrupt is returned when the storage document cannot be decoded
	ErrCorrupt = errors.New("storage file corrupt")
)

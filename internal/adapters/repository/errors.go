package repository

import "errors"

// Sentinel kinds for counter store errors.
var (
	ErrCorruptRecord = errors.New("corrupt usage record")
	ErrUnavailable   = errors.New("usage store unavailable")
)

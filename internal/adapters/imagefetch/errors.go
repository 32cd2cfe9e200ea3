package imagefetch

import "errors"

// ErrFetch marks every loader failure.
var ErrFetch = errors.New("image fetch failed")

// Causes wrapped under ErrFetch.
var (
	ErrUnsupportedReference = errors.New("unsupported image reference")
	ErrStatus               = errors.New("unexpected status")
	ErrTooLarge             = errors.New("image too large")
	ErrEmpty                = errors.New("empty image body")
	ErrPrivateHost          = errors.New("refusing private address")
)

package vision

import "errors"

// ErrModelCall marks every failed model call.
var ErrModelCall = errors.New("model call failed")

// Causes wrapped under ErrModelCall.
var (
	ErrNoImage = errors.New("empty image")
	ErrNoText  = errors.New("reply has no text block")
)

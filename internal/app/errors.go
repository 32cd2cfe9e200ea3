package service

import "errors"

// Hard failure kinds returned by Analyze. Soft outcomes (unparseable reply,
// unusable analysis) are reported in the Response instead.
var (
	ErrAuth          = errors.New("unauthenticated")
	ErrInput         = errors.New("invalid argument")
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrFetch         = errors.New("image fetch failed")
	ErrModelCall     = errors.New("model call failed")
	ErrInternal      = errors.New("internal error")
)

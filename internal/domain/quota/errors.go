package quota

import "errors"

// Sentinel kinds for quota errors.
var (
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrStore         = errors.New("usage store failed")
)

package validate

import "errors"

// ErrParse means the reply held no recoverable JSON object.
var ErrParse = errors.New("no structured payload in model reply")

package api

import (
	"errors"
	"net/http"

	service "github.com/okian/playsketch/internal/app"
	"github.com/okian/playsketch/internal/domain/quota"
	"github.com/okian/playsketch/pkg/errs"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrInvalidToken = errors.New("invalid api token entry")
)

// Error codes in the JSON error body.
const (
	codeUnauthenticated = "unauthenticated"
	codeInvalidArgument = "invalid_argument"
	codeExhausted       = "resource_exhausted"
	codeFetchFailed     = "fetch_failed"
	codeModelFailed     = "model_call_failed"
	codeInternal        = "internal"
)

// classify maps a pipeline error onto status, code and a caller-safe message.
// The outermost kind decides, so a cause carrying another kind does not
// change the class.
func classify(err error) (int, string, string) {
	switch errs.KindOf(err) {
	case service.ErrAuth:
		return http.StatusUnauthorized, codeUnauthenticated, "missing or invalid bearer token"
	case service.ErrInput, ErrBadRequest:
		return http.StatusBadRequest, codeInvalidArgument, cause(err)
	case service.ErrQuotaExceeded:
		var exceeded *quota.ExceededError
		if errors.As(err, &exceeded) {
			return http.StatusTooManyRequests, codeExhausted, exceeded.Error()
		}
		return http.StatusTooManyRequests, codeExhausted, "conversion limit reached"
	case service.ErrFetch:
		return http.StatusBadGateway, codeFetchFailed, "could not fetch the image"
	case service.ErrModelCall:
		return http.StatusBadGateway, codeModelFailed, "vision model call failed"
	default:
		return http.StatusInternalServerError, codeInternal, "internal error"
	}
}

// cause returns the innermost message below the outermost kind.
func cause(err error) string {
	var e *errs.Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return err.Error()
}

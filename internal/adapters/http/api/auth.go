package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
)

// Authenticator resolves bearer tokens to caller names.
type Authenticator struct {
	tokens []credential
}

type credential struct {
	caller string
	token  []byte
}

// NewAuthenticator parses "caller:token" entries. An empty list rejects
// every request.
func NewAuthenticator(entries []string) (*Authenticator, error) {
	a := &Authenticator{}
	for _, entry := range entries {
		caller, token, ok := strings.Cut(strings.TrimSpace(entry), ":")
		caller, token = strings.TrimSpace(caller), strings.TrimSpace(token)
		if !ok || caller == "" || token == "" {
			return nil, fmt.Errorf("%w: want caller:token", ErrInvalidToken)
		}
		a.tokens = append(a.tokens, credential{caller: caller, token: []byte(token)})
	}
	return a, nil
}

// Caller returns the caller for the request's bearer token, or "" when the
// token is missing or unknown.
func (a *Authenticator) Caller(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	caller := ""
	for _, c := range a.tokens {
		if subtle.ConstantTimeCompare(c.token, []byte(token)) == 1 && caller == "" {
			caller = c.caller
		}
	}
	return caller
}

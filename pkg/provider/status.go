// Package provider holds what the llm, stt and tts provider families share.
package provider

import (
	"errors"
	"net/http"
)

// StatusError is an upstream reply with a non-success HTTP status. Err
// carries the provider's own message.
type StatusError struct {
	Code int
	Err  error
}

// WithStatus attaches an HTTP status code to err.
func WithStatus(code int, err error) error {
	return &StatusError{Code: code, Err: err}
}

func (e *StatusError) Error() string { return e.Err.Error() }

func (e *StatusError) Unwrap() error { return e.Err }

// IsRejection reports whether the upstream refused this particular request,
// such as an oversized prompt or text over the synthesis limit. That is any
// 4xx except 401, 403, 408 and 429, which describe the account or the
// upstream rather than the request.
func IsRejection(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return se.Code >= 400 && se.Code < 500
}

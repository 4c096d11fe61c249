// Package apperr defines the error taxonomy shared by the outbound clients
// and the HTTP handlers. Sentinel values allow handlers to pick a status
// code with errors.Is without knowing which upstream produced the failure.
package apperr

import (
	"errors"
	"fmt"
)

// ErrConfigMissing is returned when a required credential or URL is not set.
// The corresponding feature degrades to a no-op or an explicit 500.
var ErrConfigMissing = errors.New("configuration missing")

// ErrValidation marks malformed or incomplete client input (HTTP 400).
var ErrValidation = errors.New("validation failed")

// ErrSignatureInvalid is returned when a payment callback cannot be
// authenticated. The request is dropped without side effects.
var ErrSignatureInvalid = errors.New("signature invalid")

// ErrUpstreamRequestFailed matches an UpstreamError whose request completed
// with a non-success status.
var ErrUpstreamRequestFailed = errors.New("upstream request failed")

// ErrUpstreamUnreachable matches an UpstreamError whose request never
// completed (network failure, timeout, cancellation).
var ErrUpstreamUnreachable = errors.New("upstream unreachable")

// maxBodyInError bounds how much of an upstream body is kept for logging.
const maxBodyInError = 512

// UpstreamError describes a failed call to an external service. Status is
// zero when the request errored before a response arrived; Err then holds
// the transport error.
type UpstreamError struct {
	Service string
	Op      string
	Status  int
	Body    string
	Err     error
}

// RequestFailed builds an UpstreamError for a completed request that came
// back with a non-success status.
func RequestFailed(service, op string, status int, body []byte) *UpstreamError {
	b := string(body)
	if len(b) > maxBodyInError {
		b = b[:maxBodyInError]
	}
	return &UpstreamError{Service: service, Op: op, Status: status, Body: b}
}

// Unreachable builds an UpstreamError for a request that errored before
// completion.
func Unreachable(service, op string, err error) *UpstreamError {
	return &UpstreamError{Service: service, Op: op, Err: err}
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: status %d", e.Service, e.Op, e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is lets errors.Is match the request-failed and unreachable sentinels.
func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrUpstreamRequestFailed:
		return e.Status != 0
	case ErrUpstreamUnreachable:
		return e.Status == 0
	}
	return false
}

// Reason renders a short machine-friendly reason such as "request_failed:502"
// suitable for storing next to a record.
func Reason(err error) string {
	var ue *UpstreamError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfigMissing):
		return "config_missing"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.As(err, &ue) && ue.Status != 0:
		return fmt.Sprintf("request_failed:%d", ue.Status)
	case errors.As(err, &ue):
		return "unreachable"
	}
	return "unknown"
}

package geocode

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a resolution failure so callers can decide between
// retrying, skipping and flagging bad input.
type ErrorKind string

const (
	KindRateLimited  ErrorKind = "RATE_LIMITED"
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindTransport    ErrorKind = "TRANSPORT_ERROR"
	KindInvalidInput ErrorKind = "INVALID_INPUT"
)

// Failure is the error type returned for every provider-side failure.
type Failure struct {
	Kind ErrorKind
	Err  error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func newFailure(kind ErrorKind, err error) *Failure {
	return &Failure{Kind: kind, Err: err}
}

// KindOf extracts the failure kind from an error chain. Errors that did not
// originate in this package classify as transport failures.
func KindOf(err error) ErrorKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindTransport
}

// IsTransient reports whether a failed call is worth retrying.
func IsTransient(err error) bool {
	switch KindOf(err) {
	case KindRateLimited, KindTransport:
		return true
	default:
		return false
	}
}

// statusToKind maps a Google Geocoding API status string to a failure kind.
// The OK and ZERO_RESULTS statuses are handled before this is consulted.
func statusToKind(status string) ErrorKind {
	switch status {
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT", "RESOURCE_EXHAUSTED":
		return KindRateLimited
	case "INVALID_REQUEST", "REQUEST_DENIED":
		return KindInvalidInput
	default:
		return KindTransport
	}
}

// httpStatusToKind classifies a non-200 HTTP response.
func httpStatusToKind(code int) ErrorKind {
	switch {
	case code == 429:
		return KindRateLimited
	case code >= 500:
		return KindTransport
	case code >= 400:
		return KindInvalidInput
	default:
		return KindTransport
	}
}

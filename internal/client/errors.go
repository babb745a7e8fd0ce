// ABOUTME: Error taxonomy for the API gateway client
// ABOUTME: ValidationError never touches the network; RequestError covers every failed call

package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/markalston/slotbook/internal/session"
)

var (
	// ErrRequestFailed matches every RequestError
	ErrRequestFailed = errors.New("request failed")
	// ErrUnauthorized matches RequestErrors caused by a missing, rejected or expired token
	ErrUnauthorized = errors.New("session expired")
)

// ValidationError reports a client-side precondition failure
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// RequestError is a failed backend call: transport error, non-2xx status or
// a response body that does not match the expected schema.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int    // 0 when no response was received
	Message    string // backend-provided error text, if any
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("backend error: %s", e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return ErrRequestFailed.Error()
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is lets callers match on ErrRequestFailed and ErrUnauthorized
func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrRequestFailed:
		return true
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized ||
			e.StatusCode == http.StatusForbidden ||
			errors.Is(e.Err, session.ErrNoSession)
	}
	return false
}

// IsUnauthorized reports whether err means the session is no longer usable
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// DefaultErrorStatus is reported on a StreamError when the transport failed
// before any response was available.
const DefaultErrorStatus = http.StatusInternalServerError

// ErrConfiguration matches every *ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports invalid input detected before any network
// activity, such as an unknown backend selector or an unsupported model.
type ConfigurationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// StreamError is the single failure type surfaced while streaming. It is
// produced either from an "error" record sent by the server or from a
// transport failure, and always terminates the stream.
type StreamError struct {
	// Message describes the failure.
	Message string

	// Payload is the offending raw record, or the last record seen when the
	// transport failed. May be empty.
	Payload string

	// StatusCode is the HTTP status of the response, or DefaultErrorStatus
	// when no response was received.
	StatusCode int

	cause error
}

// NewStreamError builds a StreamError that wraps cause.
func NewStreamError(cause error, payload string, status int) *StreamError {
	return &StreamError{
		Message:    cause.Error(),
		Payload:    payload,
		StatusCode: status,
		cause:      cause,
	}
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream error (status %d): %s", e.StatusCode, e.Message)
}

func (e *StreamError) Unwrap() error {
	return e.cause
}

// AsStreamError returns err unchanged when it already is (or wraps) a
// *StreamError, otherwise it wraps err with payload and status.
func AsStreamError(err error, payload string, status int) *StreamError {
	var se *StreamError
	if errors.As(err, &se) {
		return se
	}
	return NewStreamError(err, payload, status)
}

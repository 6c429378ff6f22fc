package docker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

// ErrSessionConsumed is returned when a session handle is used after its
// ownership has moved to a chain, or when a chain handle is reused after a
// call has already consumed it.
var ErrSessionConsumed = errors.New("docker: session consumed")

////////////////////////////////////////////////////////////////////////////////
// TYPES

// EncodingError indicates a value could not be represented on the wire. The
// request was never sent.
type EncodingError struct {
	Err error
}

// TransportError indicates the round trip failed before a response was
// received: connection refused, timeout, TLS failure or cancellation.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

// APIError is returned when the daemon responds with an error status. Message
// holds the daemon-provided message when the body could be parsed, otherwise
// a generic description; Body always holds the raw response text.
type APIError struct {
	Status  int
	Message string
	Body    string
}

// DecodeError is returned when a successful response does not match the
// closed schema of the expected result. It indicates a client/daemon
// contract mismatch rather than a rejection by the daemon.
type DecodeError struct {
	Status int
	Body   string
	Err    error
}

////////////////////////////////////////////////////////////////////////////////
// ENCODING ERROR

func (e *EncodingError) Error() string {
	return "docker: encoding: " + e.Err.Error()
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Encodingf returns an EncodingError with a formatted cause.
func Encodingf(format string, args ...any) error {
	return &EncodingError{Err: fmt.Errorf(format, args...)}
}

////////////////////////////////////////////////////////////////////////////////
// TRANSPORT ERROR

func (e *TransportError) Error() string {
	var sb strings.Builder
	sb.WriteString("docker: transport")
	if e.Method != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Method)
		sb.WriteString(" ")
		sb.WriteString(e.Path)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	return sb.String()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the round trip failed because a deadline expired.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

////////////////////////////////////////////////////////////////////////////////
// API ERROR

func (e *APIError) Error() string {
	return fmt.Sprintf("docker: status %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether the daemon could not find the resource.
func (e *APIError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// IsConflict reports whether the request conflicts with existing state, for
// example a duplicate network name.
func (e *APIError) IsConflict() bool {
	return e.Status == http.StatusConflict
}

////////////////////////////////////////////////////////////////////////////////
// DECODE ERROR

func (e *DecodeError) Error() string {
	return fmt.Sprintf("docker: decode (status %d): %v", e.Status, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// IsNotFound reports whether err wraps an APIError with a 404 status.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsNotFound()
}

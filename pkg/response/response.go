// Package response classifies a raw daemon response and decodes it into a
// typed result, a unit result or an error.
//
// Typed results use a closed schema: member names must match the json tags of
// the result type exactly, including case. An undeclared member, a missing
// required member or a null result is a DecodeError. Error statuses always produce an APIError.
package response

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	// Packages
	json "github.com/go-json-experiment/json"
	jsontext "github.com/go-json-experiment/json/jsontext"
	docker "github.com/mutablelogic/go-docker"
	schema "github.com/mutablelogic/go-docker/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Response is a fully read daemon response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

var (
	// ErrEmptyBody is wrapped by a DecodeError when a typed result was expected
	// but the body held no JSON value.
	ErrEmptyBody = errors.New("empty response body")

	// ErrUnexpectedStatus is wrapped by a DecodeError when the status is
	// neither a success nor an error.
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Success reports whether the status is 2xx.
func (r *Response) Success() bool {
	return r.Status >= 200 && r.Status < 300
}

// Failure reports whether the status indicates a client or server error.
func (r *Response) Failure() bool {
	return r.Status >= 400
}

// Decode returns the typed result carried by r, an APIError when the daemon
// reported an error, or a DecodeError when the body does not match T.
func Decode[T any](r *Response) (*T, error) {
	if r.Failure() {
		return nil, apiError(r)
	} else if !r.Success() {
		return nil, &docker.DecodeError{Status: r.Status, Body: string(r.Body), Err: ErrUnexpectedStatus}
	}
	value := jsontext.Value(bytes.TrimSpace(r.Body))
	if len(value) == 0 {
		return nil, &docker.DecodeError{Status: r.Status, Err: ErrEmptyBody}
	} else if string(value) == "null" {
		return nil, &docker.DecodeError{Status: r.Status, Body: string(r.Body), Err: ErrNullResult}
	}
	var result T
	if err := json.Unmarshal(value, &result, json.RejectUnknownMembers(true)); err != nil {
		return nil, &docker.DecodeError{Status: r.Status, Body: string(r.Body), Err: err}
	}
	if err := checkRequired(reflect.TypeFor[T](), value, ""); err != nil {
		return nil, &docker.DecodeError{Status: r.Status, Body: string(r.Body), Err: err}
	}
	return &result, nil
}

// DecodeUnit accepts any 2xx status and discards the body, which may be empty,
// whitespace or diagnostic text.
func DecodeUnit(r *Response) error {
	if r.Failure() {
		return apiError(r)
	} else if !r.Success() {
		return &docker.DecodeError{Status: r.Status, Body: string(r.Body), Err: ErrUnexpectedStatus}
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// apiError parses the daemon's error body. When the body is not a JSON object
// with a message, the error carries a generic description and the raw text.
func apiError(r *Response) *docker.APIError {
	err := &docker.APIError{
		Status: r.Status,
		Body:   string(r.Body),
	}
	var body schema.ErrorResponse
	if json.Unmarshal(r.Body, &body) == nil && body.Message != "" {
		err.Message = body.Message
	} else if text := strings.TrimSpace(string(r.Body)); text != "" {
		err.Message = fmt.Sprintf("%s: %s", http.StatusText(r.Status), text)
	} else {
		err.Message = http.StatusText(r.Status)
	}
	if err.Message == "" {
		err.Message = "unknown error"
	}
	return err
}

package request

import (
	"bytes"

	// Packages
	json "github.com/go-json-experiment/json"
	docker "github.com/mutablelogic/go-docker"
	schema "github.com/mutablelogic/go-docker/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Payload is a request body. The zero value is "no body", which is distinct
// from a body that is present but empty.
type Payload struct {
	data        []byte
	present     bool
	contentType string
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NoBody returns a payload for requests which carry no body, such as GET and
// DELETE.
func NoBody() Payload {
	return Payload{}
}

// EmptyBody returns a payload which is present but has zero length.
func EmptyBody() Payload {
	return Payload{present: true, data: []byte{}}
}

// JSON serializes v. Wire names come from the json tags of v, and map keys are
// sorted so that equal values always produce equal bytes. Values the encoding
// cannot represent, such as NaN, return an EncodingError.
func JSON(v any) (Payload, error) {
	data, err := json.Marshal(v, json.Deterministic(true))
	if err != nil {
		return Payload{}, &docker.EncodingError{Err: err}
	}
	return Payload{data: data, present: true, contentType: schema.ContentTypeJSON}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Present reports whether the payload carries a body, possibly empty.
func (p Payload) Present() bool {
	return p.present
}

// Bytes returns a copy of the body, or nil when there is no body.
func (p Payload) Bytes() []byte {
	if !p.present {
		return nil
	}
	return bytes.Clone(p.data)
}

// Len returns the length of the body.
func (p Payload) Len() int {
	return len(p.data)
}

// ContentType returns the media type of the body, or the empty string when
// there is none.
func (p Payload) ContentType() string {
	return p.contentType
}

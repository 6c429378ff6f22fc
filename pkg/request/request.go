// Package request composes a method, a path template with its arguments, an
// ordered query and an optional body into an immutable request descriptor.
// Building is deterministic: equal inputs always produce equal descriptors.
package request

import (
	"bytes"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	// Packages
	docker "github.com/mutablelogic/go-docker"
	query "github.com/mutablelogic/go-docker/pkg/query"
	schema "github.com/mutablelogic/go-docker/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Descriptor is a fully built request, independent of any transport.
type Descriptor struct {
	method string
	path   string
	query  query.Values
	header http.Header
	body   Payload
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// Build returns a descriptor for method and the path template with each
// "{name}" placeholder replaced, left to right, by the escaped path argument.
// The query is appended in order when not empty. Content headers are set only
// when body is present.
func Build(method, template string, args []string, q query.Values, body Payload) (*Descriptor, error) {
	if method == "" {
		return nil, docker.Encodingf("missing method for %q", template)
	}
	path, err := expand(template, args)
	if err != nil {
		return nil, err
	}

	header := make(http.Header, 3)
	header.Set("Accept", schema.ContentTypeJSON)
	if body.Present() {
		if ct := body.ContentType(); ct != "" {
			header.Set("Content-Type", ct)
		}
		header.Set("Content-Length", strconv.Itoa(body.Len()))
	}

	// Copy the query so the caller cannot mutate the descriptor
	var values query.Values
	if len(q) > 0 {
		values = append(make(query.Values, 0, len(q)), q...)
	}

	return &Descriptor{
		method: method,
		path:   path,
		query:  values,
		header: header,
		body:   body,
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Method returns the HTTP method.
func (d *Descriptor) Method() string {
	return d.method
}

// Path returns the escaped path, without the query.
func (d *Descriptor) Path() string {
	return d.path
}

// Query returns a copy of the query parameters, in order.
func (d *Descriptor) Query() query.Values {
	if d.query == nil {
		return nil
	}
	return append(query.Values(nil), d.query...)
}

// RequestURI returns the path followed by "?" and the encoded query, when
// there is one.
func (d *Descriptor) RequestURI() string {
	if len(d.query) == 0 {
		return d.path
	}
	return d.path + "?" + d.query.Encode()
}

// Header returns a copy of the request headers.
func (d *Descriptor) Header() http.Header {
	return d.header.Clone()
}

// HasBody reports whether the request carries a body, possibly empty.
func (d *Descriptor) HasBody() bool {
	return d.body.Present()
}

// Body returns a copy of the body bytes, or nil when there is no body.
func (d *Descriptor) Body() []byte {
	return d.body.Bytes()
}

// Equal reports whether two descriptors would produce the same request.
func (d *Descriptor) Equal(other *Descriptor) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.method != other.method || d.RequestURI() != other.RequestURI() {
		return false
	}
	if d.body.Present() != other.body.Present() || !bytes.Equal(d.body.data, other.body.data) {
		return false
	}
	return maps.EqualFunc(d.header, other.header, slices.Equal)
}

func (d *Descriptor) String() string {
	if d.body.Present() {
		return fmt.Sprintf("%s %s (%d bytes)", d.method, d.RequestURI(), d.body.Len())
	}
	return d.method + " " + d.RequestURI()
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// expand substitutes placeholders in template. Every placeholder must have a
// non-empty argument and every argument must be used.
func expand(template string, args []string) (string, error) {
	var sb strings.Builder
	n := 0
	rest := template
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			sb.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			return "", docker.Encodingf("unterminated placeholder in %q", template)
		}
		if n >= len(args) {
			return "", docker.Encodingf("missing argument for %s in %q", rest[start:start+end+1], template)
		}
		if args[n] == "" {
			return "", docker.Encodingf("empty argument for %s in %q", rest[start:start+end+1], template)
		}
		sb.WriteString(rest[:start])
		sb.WriteString(url.PathEscape(args[n]))
		rest = rest[start+end+1:]
		n++
	}
	if n != len(args) {
		return "", docker.Encodingf("%d arguments for %d placeholders in %q", len(args), n, template)
	}
	return sb.String(), nil
}

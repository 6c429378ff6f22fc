// Package query encodes typed options into an ordered list of URL query
// parameters. Parameters keep the order in which they are declared, and
// optional parameters which are absent are left out rather than sent empty.
package query

import (
	"net/url"
	"strings"

	// Packages
	json "github.com/go-json-experiment/json"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Pair is a single query parameter.
type Pair struct {
	Key   string
	Value string
}

// Values is an ordered sequence of query parameters.
type Values []Pair

// Encoder is implemented by options which contribute query parameters.
type Encoder interface {
	Query() Values
}

////////////////////////////////////////////////////////////////////////////////
// CONSTANTS

// Boolean tokens understood by the daemon.
const (
	True  = "true"
	False = "false"
)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns an empty sequence with room for n parameters.
func New(n int) Values {
	return make(Values, 0, n)
}

// Encode returns the parameters of e, or nil when e is nil.
func Encode(e Encoder) Values {
	if e == nil {
		return nil
	}
	return e.Query()
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Bool returns the wire token for v.
func Bool(v bool) string {
	if v {
		return True
	}
	return False
}

// With appends a required parameter.
func (v Values) With(key, value string) Values {
	return append(v, Pair{Key: key, Value: value})
}

// WithBool appends a required boolean parameter.
func (v Values) WithBool(key string, value bool) Values {
	return v.With(key, Bool(value))
}

// WithOptional appends the parameter only when value is not nil.
func (v Values) WithOptional(key string, value *string) Values {
	if value == nil {
		return v
	}
	return v.With(key, *value)
}

// WithOptionalBool appends the boolean parameter only when value is not nil.
func (v Values) WithOptionalBool(key string, value *bool) Values {
	if value == nil {
		return v
	}
	return v.WithBool(key, *value)
}

// WithJSON appends a parameter whose value is a JSON-encoded filter map, as
// used by list and prune endpoints. Empty maps are left out.
func (v Values) WithJSON(key string, value map[string][]string) Values {
	if len(value) == 0 {
		return v
	}
	// A map of string slices always marshals
	data, err := json.Marshal(value, json.Deterministic(true))
	if err != nil {
		panic(err)
	}
	return v.With(key, string(data))
}

// Get returns the value of the first parameter named key.
func (v Values) Get(key string) (string, bool) {
	for _, p := range v {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Encode renders the parameters as "k=v&k2=v2", escaping keys and values
// independently and keeping the declared order.
func (v Values) Encode() string {
	if len(v) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, p := range v {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
	}
	return sb.String()
}

// URLValues converts the parameters to url.Values. Ordering is lost.
func (v Values) URLValues() url.Values {
	result := make(url.Values, len(v))
	for _, p := range v {
		result.Add(p.Key, p.Value)
	}
	return result
}

package response

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	// Packages
	json "github.com/go-json-experiment/json"
	jsontext "github.com/go-json-experiment/json/jsontext"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

var (
	// ErrNullResult is wrapped by a DecodeError when a typed result was
	// expected but the body was the JSON null.
	ErrNullResult = errors.New("null response body")

	// ErrMissingMember is wrapped by a DecodeError when an object lacks a
	// member which the result type requires.
	ErrMissingMember = errors.New("missing member")
)

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// checkRequired walks the value against t and returns an error naming the
// first required member which is absent. Struct fields are required unless
// they are pointers or tagged omitzero or omitempty.
func checkRequired(t reflect.Type, value jsontext.Value, path string) error {
	if value.Kind() == 'n' {
		return nil
	}
	switch t.Kind() {
	case reflect.Pointer:
		return checkRequired(t.Elem(), value, path)
	case reflect.Slice, reflect.Array:
		var elems []jsontext.Value
		if err := json.Unmarshal(value, &elems); err != nil {
			return err
		}
		for i, elem := range elems {
			if err := checkRequired(t.Elem(), elem, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case reflect.Map:
		var members map[string]jsontext.Value
		if err := json.Unmarshal(value, &members); err != nil {
			return err
		}
		for key, member := range members {
			if err := checkRequired(t.Elem(), member, path+"."+key); err != nil {
				return err
			}
		}
	case reflect.Struct:
		var members map[string]jsontext.Value
		if err := json.Unmarshal(value, &members); err != nil {
			return err
		}
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			name, optional, ok := memberName(field)
			if !ok {
				continue
			}
			member, exists := members[name]
			if !exists {
				if optional {
					continue
				}
				return fmt.Errorf("%w %q", ErrMissingMember, strings.TrimPrefix(path+"."+name, "."))
			}
			if err := checkRequired(field.Type, member, path+"."+name); err != nil {
				return err
			}
		}
	}
	return nil
}

// memberName returns the wire name of a struct field and whether it may be
// absent. It returns false for fields which are never decoded.
func memberName(field reflect.StructField) (string, bool, bool) {
	if !field.IsExported() {
		return "", false, false
	}
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, false
	}
	name, options, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	optional := field.Type.Kind() == reflect.Pointer
	for _, option := range strings.Split(options, ",") {
		if option == "omitzero" || option == "omitempty" {
			optional = true
		}
	}
	return name, optional, true
}

package schema

import (
	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// ErrorResponse is the body the daemon sends with an error status.
type ErrorResponse struct {
	Message string `json:"message"`
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r ErrorResponse) String() string {
	return types.Stringify(r)
}

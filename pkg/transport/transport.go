// Package transport sends request descriptors to the daemon and returns the
// raw responses. The core never manages connections itself: connection
// pooling, TLS and socket handling belong to the underlying http.Client.
package transport

import (
	"context"

	// Packages
	request "github.com/mutablelogic/go-docker/pkg/request"
	response "github.com/mutablelogic/go-docker/pkg/response"
)

///////////////////////////////////////////////////////////////////////////////
// INTERFACES

// Transport performs a single round trip. Implementations must be safe for
// concurrent use, and must return a *docker.TransportError when no response
// was received.
type Transport interface {
	RoundTrip(context.Context, *request.Descriptor) (*response.Response, error)
}

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Func adapts a function to the Transport interface.
type Func func(context.Context, *request.Descriptor) (*response.Response, error)

var _ Transport = Func(nil)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (fn Func) RoundTrip(ctx context.Context, req *request.Descriptor) (*response.Response, error) {
	return fn(ctx, req)
}

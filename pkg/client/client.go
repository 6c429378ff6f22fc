// Package client implements the network endpoints of the daemon API over a
// transport. A Client may be used directly and concurrently, or handed to a
// Chain which sequences dependent calls through a single owner.
package client

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	// Packages
	otel "github.com/mutablelogic/go-client/pkg/otel"
	docker "github.com/mutablelogic/go-docker"
	query "github.com/mutablelogic/go-docker/pkg/query"
	request "github.com/mutablelogic/go-docker/pkg/request"
	response "github.com/mutablelogic/go-docker/pkg/response"
	schema "github.com/mutablelogic/go-docker/pkg/schema"
	transport "github.com/mutablelogic/go-docker/pkg/transport"
	errgroup "golang.org/x/sync/errgroup"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Client is a session with the daemon. It owns the transport until the
// session is handed to a Chain, after which every call returns
// docker.ErrSessionConsumed.
type Client struct {
	opts
	mu        sync.RWMutex
	transport transport.Transport
}

// call describes a single endpoint call. A nil body means no request body.
type call struct {
	op       string
	method   string
	template string
	args     []string
	query    query.Values
	body     any
}

var _ docker.NetworkAPI = (*Client)(nil)

////////////////////////////////////////////////////////////////////////////////
// CONSTANTS

// parallelInspects is the maximum number of concurrent requests issued by
// InspectNetworks.
const parallelInspects = 10

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a session with the daemon at host, which is a unix socket
// ("unix:///var/run/docker.sock") or a TCP address ("tcp://127.0.0.1:2375").
func New(host string, opt ...Opt) (*Client, error) {
	o, err := applyOpts(opt)
	if err != nil {
		return nil, err
	}
	t, err := transport.NewHTTP(host, o.transports...)
	if err != nil {
		return nil, err
	}
	return &Client{opts: o, transport: t}, nil
}

// NewWithTransport creates a session which sends requests through t.
func NewWithTransport(t transport.Transport, opt ...Opt) (*Client, error) {
	if t == nil {
		return nil, errors.New("missing transport")
	}
	o, err := applyOpts(opt)
	if err != nil {
		return nil, err
	}
	return &Client{opts: o, transport: t}, nil
}

// Close releases the transport, if it holds any resources. A consumed
// session has nothing to close.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.transport
	c.transport = nil
	if closer, ok := t.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// CreateNetwork creates a network. All fields of the options are sent.
func (c *Client) CreateNetwork(ctx context.Context, opts schema.CreateNetworkOptions) (*schema.CreateNetworkResults, error) {
	return do[schema.CreateNetworkResults](ctx, c, call{
		op:       "CreateNetwork",
		method:   "POST",
		template: "/networks/create",
		body:     opts,
	})
}

// RemoveNetwork removes a network by name or identifier.
func (c *Client) RemoveNetwork(ctx context.Context, name string) error {
	return c.exec(ctx, call{
		op:       "RemoveNetwork",
		method:   "DELETE",
		template: "/networks/{id}",
		args:     []string{name},
	})
}

// InspectNetwork returns a network by name or identifier. The options may be
// nil.
func (c *Client) InspectNetwork(ctx context.Context, name string, opts *schema.InspectNetworkOptions) (*schema.InspectNetworkResults, error) {
	return do[schema.InspectNetworkResults](ctx, c, call{
		op:       "InspectNetwork",
		method:   "GET",
		template: "/networks/{id}",
		args:     []string{name},
		query:    query.Encode(opts),
	})
}

// ListNetworks returns the networks matching the filters. The options may be
// nil.
func (c *Client) ListNetworks(ctx context.Context, opts *schema.ListNetworksOptions) ([]schema.InspectNetworkResults, error) {
	result, err := do[[]schema.InspectNetworkResults](ctx, c, call{
		op:       "ListNetworks",
		method:   "GET",
		template: "/networks",
		query:    query.Encode(opts),
	})
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// ConnectNetwork attaches a container to a network.
func (c *Client) ConnectNetwork(ctx context.Context, name string, opts schema.ConnectNetworkOptions) error {
	return c.exec(ctx, call{
		op:       "ConnectNetwork",
		method:   "POST",
		template: "/networks/{id}/connect",
		args:     []string{name},
		body:     opts,
	})
}

// DisconnectNetwork detaches a container from a network.
func (c *Client) DisconnectNetwork(ctx context.Context, name string, opts schema.DisconnectNetworkOptions) error {
	return c.exec(ctx, call{
		op:       "DisconnectNetwork",
		method:   "POST",
		template: "/networks/{id}/disconnect",
		args:     []string{name},
		body:     opts,
	})
}

// PruneNetworks removes unused networks matching the filters. The options may
// be nil.
func (c *Client) PruneNetworks(ctx context.Context, opts *schema.PruneNetworksOptions) (*schema.PruneNetworksResults, error) {
	return do[schema.PruneNetworksResults](ctx, c, call{
		op:       "PruneNetworks",
		method:   "POST",
		template: "/networks/prune",
		query:    query.Encode(opts),
	})
}

// InspectNetworks inspects several networks concurrently and returns the
// results in the order of names. The first failure cancels the remaining
// requests and is returned.
func (c *Client) InspectNetworks(ctx context.Context, names []string, opts *schema.InspectNetworkOptions) (_ []*schema.InspectNetworkResults, err error) {
	// OTEL span
	ctx, endFunc := otel.StartSpan(c.tracer, ctx, spanName("InspectNetworks"))
	defer func() { endFunc(err) }()

	// Fail early when the session has moved
	if _, err := c.acquire(); err != nil {
		return nil, err
	}

	results := make([]*schema.InspectNetworkResults, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelInspects)
	for i, name := range names {
		g.Go(func() error {
			result, err := c.InspectNetwork(ctx, name, opts)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// do performs the call and decodes a typed result.
func do[T any](ctx context.Context, c *Client, call call) (_ *T, err error) {
	// OTEL span
	ctx, endFunc := otel.StartSpan(c.tracer, ctx, spanName(call.op))
	defer func() { endFunc(err) }()

	resp, err := c.send(ctx, call)
	if err != nil {
		return nil, err
	}
	return response.Decode[T](resp)
}

// exec performs the call and expects a unit result.
func (c *Client) exec(ctx context.Context, call call) (err error) {
	// OTEL span
	ctx, endFunc := otel.StartSpan(c.tracer, ctx, spanName(call.op))
	defer func() { endFunc(err) }()

	resp, err := c.send(ctx, call)
	if err != nil {
		return err
	}
	return response.DecodeUnit(resp)
}

// send encodes and builds the request, then makes exactly one round trip.
// Nothing is sent when the request cannot be encoded.
func (c *Client) send(ctx context.Context, call call) (*response.Response, error) {
	t, err := c.acquire()
	if err != nil {
		return nil, err
	}

	// Encode the body
	body := request.NoBody()
	if call.body != nil {
		if body, err = request.JSON(call.body); err != nil {
			return nil, err
		}
	}

	// Build the request
	req, err := request.Build(call.method, c.prefix+call.template, call.args, call.query, body)
	if err != nil {
		return nil, err
	}

	// Round trip
	start := time.Now()
	resp, err := t.RoundTrip(ctx, req)
	if err != nil {
		c.logger.Debug().Err(err).
			Str("op", call.op).
			Str("method", req.Method()).
			Str("path", req.Path()).
			Dur("duration", time.Since(start)).
			Msg("request failed")
		return nil, err
	}
	c.logger.Debug().
		Str("op", call.op).
		Str("method", req.Method()).
		Str("path", req.Path()).
		Int("status", resp.Status).
		Dur("duration", time.Since(start)).
		Msg("request")

	// Return success
	return resp, nil
}

// acquire returns the transport, or ErrSessionConsumed when the session has
// been handed to a chain.
func (c *Client) acquire() (transport.Transport, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.transport == nil {
		return nil, docker.ErrSessionConsumed
	}
	return c.transport, nil
}

func spanName(op string) string {
	return schema.SchemaName + "." + op
}

package client

import (
	"context"
	"sync/atomic"

	// Packages
	docker "github.com/mutablelogic/go-docker"
	schema "github.com/mutablelogic/go-docker/pkg/schema"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Chain sequences dependent calls through a single owner. Every call consumes
// the receiver and returns a new Chain, which is the only valid handle going
// forward, including when the call fails:
//
//	chain := c.Chain()
//	chain, network, err := chain.CreateNetwork(ctx, schema.CreateNetworkOptions{Name: "certs"})
//	if err != nil {
//	   ...
//	}
//	chain, err = chain.RemoveNetwork(ctx, network.ID)
//	c, err = chain.Release()
//
// Using a consumed Chain returns docker.ErrSessionConsumed and sends nothing.
type Chain struct {
	session atomic.Pointer[Client]
}

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// Chain moves the session into a new chain. Calls on c return
// docker.ErrSessionConsumed until the chain is released. When c has already
// been consumed, the chain returned is consumed too.
func (c *Client) Chain() *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()

	chain := new(Chain)
	if c.transport != nil {
		chain.session.Store(&Client{opts: c.opts, transport: c.transport})
		c.transport = nil
	}
	return chain
}

// Release ends the chain and returns the session as a new Client.
func (chain *Chain) Release() (*Client, error) {
	session, err := chain.take()
	if err != nil {
		return nil, err
	}
	return session, nil
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// CreateNetwork consumes the chain and creates a network.
func (chain *Chain) CreateNetwork(ctx context.Context, opts schema.CreateNetworkOptions) (*Chain, *schema.CreateNetworkResults, error) {
	session, err := chain.take()
	if err != nil {
		return nil, nil, err
	}
	result, err := session.CreateNetwork(ctx, opts)
	return next(session), result, err
}

// RemoveNetwork consumes the chain and removes a network by name or identifier.
func (chain *Chain) RemoveNetwork(ctx context.Context, name string) (*Chain, error) {
	session, err := chain.take()
	if err != nil {
		return nil, err
	}
	return next(session), session.RemoveNetwork(ctx, name)
}

// InspectNetwork consumes the chain and returns a network. The options may be nil.
func (chain *Chain) InspectNetwork(ctx context.Context, name string, opts *schema.InspectNetworkOptions) (*Chain, *schema.InspectNetworkResults, error) {
	session, err := chain.take()
	if err != nil {
		return nil, nil, err
	}
	result, err := session.InspectNetwork(ctx, name, opts)
	return next(session), result, err
}

// ListNetworks consumes the chain and returns the networks matching the filters.
func (chain *Chain) ListNetworks(ctx context.Context, opts *schema.ListNetworksOptions) (*Chain, []schema.InspectNetworkResults, error) {
	session, err := chain.take()
	if err != nil {
		return nil, nil, err
	}
	result, err := session.ListNetworks(ctx, opts)
	return next(session), result, err
}

// ConnectNetwork consumes the chain and attaches a container to a network.
func (chain *Chain) ConnectNetwork(ctx context.Context, name string, opts schema.ConnectNetworkOptions) (*Chain, error) {
	session, err := chain.take()
	if err != nil {
		return nil, err
	}
	return next(session), session.ConnectNetwork(ctx, name, opts)
}

// DisconnectNetwork consumes the chain and detaches a container from a network.
func (chain *Chain) DisconnectNetwork(ctx context.Context, name string, opts schema.DisconnectNetworkOptions) (*Chain, error) {
	session, err := chain.take()
	if err != nil {
		return nil, err
	}
	return next(session), session.DisconnectNetwork(ctx, name, opts)
}

// PruneNetworks consumes the chain and removes unused networks.
func (chain *Chain) PruneNetworks(ctx context.Context, opts *schema.PruneNetworksOptions) (*Chain, *schema.PruneNetworksResults, error) {
	session, err := chain.take()
	if err != nil {
		return nil, nil, err
	}
	result, err := session.PruneNetworks(ctx, opts)
	return next(session), result, err
}

// InspectNetworks consumes the chain and inspects several networks concurrently,
// returning the results in the order of names.
func (chain *Chain) InspectNetworks(ctx context.Context, names []string, opts *schema.InspectNetworkOptions) (*Chain, []*schema.InspectNetworkResults, error) {
	session, err := chain.take()
	if err != nil {
		return nil, nil, err
	}
	result, err := session.InspectNetworks(ctx, names, opts)
	return next(session), result, err
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// take consumes the chain. Exactly one caller receives the session.
func (chain *Chain) take() (*Client, error) {
	if chain == nil {
		return nil, docker.ErrSessionConsumed
	}
	if session := chain.session.Swap(nil); session != nil {
		return session, nil
	}
	return nil, docker.ErrSessionConsumed
}

func next(session *Client) *Chain {
	chain := new(Chain)
	chain.session.Store(session)
	return chain
}

// Package docker is the root of a typed client for the docker daemon's HTTP
// control API. It defines the operation surface and the error taxonomy shared
// by the encoder, builder, decoder and session packages under pkg/.
//
// Create a session with:
//
//	c, err := client.New("unix:///var/run/docker.sock")
//	if err != nil {
//	   panic(err)
//	}
//
// Then issue calls directly, or hand the session to a chain to sequence
// dependent calls:
//
//	chain := c.Chain()
//	chain, network, err := chain.CreateNetwork(ctx, schema.CreateNetworkOptions{Name: "certs"})
package docker

import (
	"context"

	// Packages
	schema "github.com/mutablelogic/go-docker/pkg/schema"
)

////////////////////////////////////////////////////////////////////////////////
// INTERFACES

// NetworkAPI is the network endpoint family of the daemon API. Each call
// performs exactly one round trip per network, with no retries.
type NetworkAPI interface {
	// Create, remove and inspect
	CreateNetwork(context.Context, schema.CreateNetworkOptions) (*schema.CreateNetworkResults, error)
	RemoveNetwork(context.Context, string) error
	InspectNetwork(context.Context, string, *schema.InspectNetworkOptions) (*schema.InspectNetworkResults, error)

	// Enumerate, attach and clean up
	ListNetworks(context.Context, *schema.ListNetworksOptions) ([]schema.InspectNetworkResults, error)
	ConnectNetwork(context.Context, string, schema.ConnectNetworkOptions) error
	DisconnectNetwork(context.Context, string, schema.DisconnectNetworkOptions) error
	PruneNetworks(context.Context, *schema.PruneNetworksOptions) (*schema.PruneNetworksResults, error)
}

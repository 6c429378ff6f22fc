package schema

import (
	// Packages
	query "github.com/mutablelogic/go-docker/pkg/query"
	types "github.com/mutablelogic/go-server/pkg/types"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES - CREATE

// CreateNetworkOptions is the body of a create network request. All fields are
// sent, including zero values.
type CreateNetworkOptions struct {
	// The network's name.
	Name string `json:"Name"`

	// Best-effort check for an existing network with the same name. Networks
	// are keyed by a random ID, so collisions are not guaranteed to be caught.
	CheckDuplicate bool `json:"CheckDuplicate"`

	// Name of the network driver plugin to use.
	Driver string `json:"Driver"`

	// Restrict external access to the network.
	Internal bool `json:"Internal"`

	// Globally scoped network is manually attachable by regular containers
	// from workers in swarm mode.
	Attachable bool `json:"Attachable"`

	// Ingress network provides the routing-mesh in swarm mode.
	Ingress bool `json:"Ingress"`

	// IP address management.
	IPAM IPAM `json:"IPAM"`

	// Enable IPv6 on the network.
	EnableIPv6 bool `json:"EnableIPv6"`

	// Driver specific options.
	Options map[string]string `json:"Options"`

	// User-defined metadata.
	Labels map[string]string `json:"Labels"`
}

// IPAM represents IP address management for a network.
type IPAM struct {
	Driver  string            `json:"Driver"`
	Config  []IPAMConfig      `json:"Config"`
	Options map[string]string `json:"Options"`
}

// IPAMConfig is a single IPAM pool. Nil fields are not sent, while a pointer to
// an empty string is sent as "".
type IPAMConfig struct {
	Subnet     *string           `json:"Subnet,omitzero"`
	IPRange    *string           `json:"IPRange,omitzero"`
	Gateway    *string           `json:"Gateway,omitzero"`
	AuxAddress map[string]string `json:"AuxAddress,omitzero"`
}

// CreateNetworkResults is returned by a create network request.
type CreateNetworkResults struct {
	ID      string `json:"Id"`
	Warning string `json:"Warning"`
}

////////////////////////////////////////////////////////////////////////////////
// TYPES - INSPECT

// InspectNetworkOptions are the query parameters of an inspect request.
type InspectNetworkOptions struct {
	Verbose *bool   `json:"verbose,omitzero"` // detailed output for troubleshooting
	Scope   *string `json:"scope,omitzero"`   // swarm, global or local
}

// InspectNetworkResults describes a network.
type InspectNetworkResults struct {
	Name       string                                     `json:"Name"`
	ID         string                                     `json:"Id"`
	Created    string                                     `json:"Created"`
	Scope      string                                     `json:"Scope"`
	Driver     string                                     `json:"Driver"`
	EnableIPv6 bool                                       `json:"EnableIPv6"`
	IPAM       IPAM                                       `json:"IPAM"`
	Internal   bool                                       `json:"Internal"`
	Attachable bool                                       `json:"Attachable"`
	Ingress    bool                                       `json:"Ingress"`
	Containers map[string]InspectNetworkResultsContainers `json:"Containers"`
	Options    map[string]string                          `json:"Options"`
	Labels     map[string]string                          `json:"Labels"`
	ConfigFrom map[string]string                          `json:"ConfigFrom"`
	ConfigOnly bool                                       `json:"ConfigOnly"`
}

// InspectNetworkResultsContainers is a container endpoint attached to a network.
type InspectNetworkResultsContainers struct {
	Name        string `json:"Name"`
	EndpointID  string `json:"EndpointID"`
	MacAddress  string `json:"MacAddress"`
	IPv4Address string `json:"IPv4Address"`
	IPv6Address string `json:"IPv6Address"`
}

////////////////////////////////////////////////////////////////////////////////
// TYPES - LIST AND PRUNE

// ListNetworksOptions filters the networks returned by a list request, for
// example {"driver": ["bridge"]}.
type ListNetworksOptions struct {
	Filters map[string][]string `json:"filters,omitempty"`
}

// PruneNetworksOptions filters the networks removed by a prune request.
type PruneNetworksOptions struct {
	Filters map[string][]string `json:"filters,omitempty"`
}

// PruneNetworksResults lists the networks removed by a prune request.
type PruneNetworksResults struct {
	NetworksDeleted []string `json:"NetworksDeleted"`
}

////////////////////////////////////////////////////////////////////////////////
// TYPES - CONNECT AND DISCONNECT

// ConnectNetworkOptions attaches a container to a network.
type ConnectNetworkOptions struct {
	Container      string            `json:"Container"`
	EndpointConfig *EndpointSettings `json:"EndpointConfig,omitzero"`
}

// EndpointSettings configures the endpoint of a connected container.
type EndpointSettings struct {
	IPAMConfig *EndpointIPAMConfig `json:"IPAMConfig,omitzero"`
	Links      []string            `json:"Links,omitzero"`
	Aliases    []string            `json:"Aliases,omitzero"`
}

// EndpointIPAMConfig requests static addresses for an endpoint.
type EndpointIPAMConfig struct {
	IPv4Address *string `json:"IPv4Address,omitzero"`
	IPv6Address *string `json:"IPv6Address,omitzero"`
}

// DisconnectNetworkOptions detaches a container from a network.
type DisconnectNetworkOptions struct {
	Container string `json:"Container"`
	Force     bool   `json:"Force"`
}

////////////////////////////////////////////////////////////////////////////////
// QUERY

var _ query.Encoder = (*InspectNetworkOptions)(nil)
var _ query.Encoder = (*ListNetworksOptions)(nil)
var _ query.Encoder = (*PruneNetworksOptions)(nil)

// Query returns the verbose and scope parameters, in that order, leaving out
// those which are not set.
func (o *InspectNetworkOptions) Query() query.Values {
	if o == nil {
		return nil
	}
	return query.New(2).
		WithOptionalBool("verbose", o.Verbose).
		WithOptional("scope", o.Scope)
}

func (o *ListNetworksOptions) Query() query.Values {
	if o == nil {
		return nil
	}
	return query.New(1).WithJSON("filters", o.Filters)
}

func (o *PruneNetworksOptions) Query() query.Values {
	if o == nil {
		return nil
	}
	return query.New(1).WithJSON("filters", o.Filters)
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (o CreateNetworkOptions) String() string {
	return types.Stringify(o)
}

func (r CreateNetworkResults) String() string {
	return types.Stringify(r)
}

func (o InspectNetworkOptions) String() string {
	return types.Stringify(o)
}

func (r InspectNetworkResults) String() string {
	return types.Stringify(r)
}

func (o ListNetworksOptions) String() string {
	return types.Stringify(o)
}

func (o PruneNetworksOptions) String() string {
	return types.Stringify(o)
}

func (r PruneNetworksResults) String() string {
	return types.Stringify(r)
}

func (o ConnectNetworkOptions) String() string {
	return types.Stringify(o)
}

func (o DisconnectNetworkOptions) String() string {
	return types.Stringify(o)
}

package dockertest

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	// Packages
	otel "github.com/mutablelogic/go-client/pkg/otel"
	schema "github.com/mutablelogic/go-docker/pkg/schema"
	trace "go.opentelemetry.io/otel/trace"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Registry is an in-memory set of networks which behaves like the daemon's
// network store. It is safe for concurrent use.
type Registry struct {
	sync.Mutex
	tracer   trace.Tracer
	networks map[string]*schema.InspectNetworkResults
}

// Error is a failure with the status the daemon would respond with.
type Error struct {
	Status  int
	Message string
}

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Networks which always exist and cannot be removed or pruned
var predefined = []struct {
	name, driver string
}{
	{"bridge", "bridge"},
	{"host", "host"},
	{"none", "null"},
}

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewRegistry returns a registry holding the predefined networks.
func NewRegistry(tracer trace.Tracer) *Registry {
	r := &Registry{
		tracer:   tracer,
		networks: make(map[string]*schema.InspectNetworkResults),
	}
	for _, p := range predefined {
		network := newNetwork(p.name, p.driver)
		r.networks[network.ID] = network
	}
	return r
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (e *Error) Error() string {
	return e.Message
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Create adds a network. The name must be unique.
func (r *Registry) Create(ctx context.Context, req schema.CreateNetworkOptions) (_ *schema.CreateNetworkResults, err error) {
	_, endFunc := otel.StartSpan(r.tracer, ctx, spanName("Create"))
	defer func() { endFunc(err) }()

	if req.Name == "" {
		return nil, errorf(http.StatusBadRequest, "network name is required")
	}

	r.Lock()
	defer r.Unlock()
	if r.byName(req.Name) != nil {
		return nil, errorf(http.StatusConflict, "network with name %s already exists", req.Name)
	}

	driver := req.Driver
	if driver == "" {
		driver = "bridge"
	}
	network := newNetwork(req.Name, driver)
	network.Internal = req.Internal
	network.Attachable = req.Attachable
	network.Ingress = req.Ingress
	network.EnableIPv6 = req.EnableIPv6
	if req.IPAM.Driver != "" {
		network.IPAM.Driver = req.IPAM.Driver
	}
	network.IPAM.Config = slices.Clone(req.IPAM.Config)
	if req.IPAM.Options != nil {
		network.IPAM.Options = maps.Clone(req.IPAM.Options)
	}
	if req.Options != nil {
		network.Options = maps.Clone(req.Options)
	}
	if req.Labels != nil {
		network.Labels = maps.Clone(req.Labels)
	}
	r.networks[network.ID] = network

	return &schema.CreateNetworkResults{ID: network.ID}, nil
}

// Get returns a copy of a network, found by identifier, name or identifier
// prefix.
func (r *Registry) Get(ctx context.Context, name string) (_ *schema.InspectNetworkResults, err error) {
	_, endFunc := otel.StartSpan(r.tracer, ctx, spanName("Get"))
	defer func() { endFunc(err) }()

	r.Lock()
	defer r.Unlock()
	network := r.find(name)
	if network == nil {
		return nil, errorf(http.StatusNotFound, "network %s not found", name)
	}
	return clone(network), nil
}

// List returns copies of the networks matching the filters, ordered by name.
func (r *Registry) List(ctx context.Context, filters map[string][]string) (_ []schema.InspectNetworkResults, err error) {
	_, endFunc := otel.StartSpan(r.tracer, ctx, spanName("List"))
	defer func() { endFunc(err) }()

	if err := validFilters(filters, "name", "id", "driver", "label", "scope"); err != nil {
		return nil, err
	}

	r.Lock()
	defer r.Unlock()
	result := make([]schema.InspectNetworkResults, 0, len(r.networks))
	for _, network := range r.networks {
		if match(network, filters) {
			result = append(result, *clone(network))
		}
	}
	slices.SortFunc(result, func(a, b schema.InspectNetworkResults) int {
		return strings.Compare(a.Name, b.Name)
	})
	return result, nil
}

// Remove deletes a network which has no attached containers.
func (r *Registry) Remove(ctx context.Context, name string) (err error) {
	_, endFunc := otel.StartSpan(r.tracer, ctx, spanName("Remove"))
	defer func() { endFunc(err) }()

	r.Lock()
	defer r.Unlock()
	network := r.find(name)
	if network == nil {
		return errorf(http.StatusNotFound, "network %s not found", name)
	}
	if isPredefined(network.Name) {
		return errorf(http.StatusForbidden, "%s is a pre-defined network and cannot be removed", network.Name)
	}
	if len(network.Containers) > 0 {
		return errorf(http.StatusForbidden, "error while removing network: network %s has active endpoints", network.Name)
	}
	delete(r.networks, network.ID)
	return nil
}

// Connect attaches a container to a network.
func (r *Registry) Connect(ctx context.Context, name string, req schema.ConnectNetworkOptions) (err error) {
	_, endFunc := otel.StartSpan(r.tracer, ctx, spanName("Connect"))
	defer func() { endFunc(err) }()

	if req.Container == "" {
		return errorf(http.StatusBadRequest, "container is required")
	}

	r.Lock()
	defer r.Unlock()
	network := r.find(name)
	if network == nil {
		return errorf(http.StatusNotFound, "network %s not found", name)
	}
	if _, exists := network.Containers[req.Container]; exists {
		return errorf(http.StatusForbidden, "endpoint with name %s already exists in network %s", req.Container, network.Name)
	}

	endpoint := schema.InspectNetworkResultsContainers{
		Name:       req.Container,
		EndpointID: newID(),
		MacAddress: fmt.Sprintf("02:42:ac:11:00:%02x", len(network.Containers)+2),
	}
	if req.EndpointConfig != nil && req.EndpointConfig.IPAMConfig != nil {
		if v := req.EndpointConfig.IPAMConfig.IPv4Address; v != nil {
			endpoint.IPv4Address = *v
		}
		if v := req.EndpointConfig.IPAMConfig.IPv6Address; v != nil {
			endpoint.IPv6Address = *v
		}
	}
	network.Containers[req.Container] = endpoint
	return nil
}

// Disconnect detaches a container from a network.
func (r *Registry) Disconnect(ctx context.Context, name string, req schema.DisconnectNetworkOptions) (err error) {
	_, endFunc := otel.StartSpan(r.tracer, ctx, spanName("Disconnect"))
	defer func() { endFunc(err) }()

	r.Lock()
	defer r.Unlock()
	network := r.find(name)
	if network == nil {
		return errorf(http.StatusNotFound, "network %s not found", name)
	}
	if _, exists := network.Containers[req.Container]; !exists {
		return errorf(http.StatusNotFound, "container %s is not connected to network %s", req.Container, network.Name)
	}
	delete(network.Containers, req.Container)
	return nil
}

// Prune removes unused networks matching the filters and returns their names.
func (r *Registry) Prune(ctx context.Context, filters map[string][]string) (_ *schema.PruneNetworksResults, err error) {
	_, endFunc := otel.StartSpan(r.tracer, ctx, spanName("Prune"))
	defer func() { endFunc(err) }()

	if err := validFilters(filters, "label"); err != nil {
		return nil, err
	}

	r.Lock()
	defer r.Unlock()
	result := &schema.PruneNetworksResults{NetworksDeleted: []string{}}
	for id, network := range r.networks {
		if isPredefined(network.Name) || len(network.Containers) > 0 || !match(network, filters) {
			continue
		}
		delete(r.networks, id)
		result.NetworksDeleted = append(result.NetworksDeleted, network.Name)
	}
	slices.Sort(result.NetworksDeleted)
	return result, nil
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// find returns a network by identifier, then name, then unique identifier
// prefix. The registry must be locked.
func (r *Registry) find(name string) *schema.InspectNetworkResults {
	if name == "" {
		return nil
	}
	if network, exists := r.networks[name]; exists {
		return network
	}
	if network := r.byName(name); network != nil {
		return network
	}
	var found *schema.InspectNetworkResults
	for id, network := range r.networks {
		if strings.HasPrefix(id, name) {
			if found != nil {
				return nil
			}
			found = network
		}
	}
	return found
}

func (r *Registry) byName(name string) *schema.InspectNetworkResults {
	for _, network := range r.networks {
		if network.Name == name {
			return network
		}
	}
	return nil
}

func newNetwork(name, driver string) *schema.InspectNetworkResults {
	return &schema.InspectNetworkResults{
		Name:    name,
		ID:      newID(),
		Created: time.Now().UTC().Format(time.RFC3339Nano),
		Scope:   "local",
		Driver:  driver,
		IPAM: schema.IPAM{
			Driver:  "default",
			Config:  []schema.IPAMConfig{},
			Options: map[string]string{},
		},
		Containers: map[string]schema.InspectNetworkResultsContainers{},
		Options:    map[string]string{},
		Labels:     map[string]string{},
		ConfigFrom: map[string]string{"Network": ""},
	}
}

func clone(network *schema.InspectNetworkResults) *schema.InspectNetworkResults {
	result := *network
	result.IPAM.Config = slices.Clone(network.IPAM.Config)
	result.IPAM.Options = maps.Clone(network.IPAM.Options)
	result.Containers = maps.Clone(network.Containers)
	result.Options = maps.Clone(network.Options)
	result.Labels = maps.Clone(network.Labels)
	result.ConfigFrom = maps.Clone(network.ConfigFrom)
	return &result
}

// match reports whether the network satisfies every filter. Values for the
// same filter are alternatives.
func match(network *schema.InspectNetworkResults, filters map[string][]string) bool {
	for key, values := range filters {
		if len(values) == 0 {
			continue
		}
		if !slices.ContainsFunc(values, func(value string) bool {
			return matchOne(network, key, value)
		}) {
			return false
		}
	}
	return true
}

func matchOne(network *schema.InspectNetworkResults, key, value string) bool {
	switch key {
	case "name":
		return strings.Contains(network.Name, value)
	case "id":
		return strings.HasPrefix(network.ID, value)
	case "driver":
		return network.Driver == value
	case "scope":
		return network.Scope == value
	case "label":
		k, v, hasValue := strings.Cut(value, "=")
		label, exists := network.Labels[k]
		return exists && (!hasValue || label == v)
	default:
		return false
	}
}

func validFilters(filters map[string][]string, accepted ...string) error {
	for key := range filters {
		if !slices.Contains(accepted, key) {
			return errorf(http.StatusBadRequest, "invalid filter '%s'", key)
		}
	}
	return nil
}

func isPredefined(name string) bool {
	return slices.ContainsFunc(predefined, func(p struct{ name, driver string }) bool {
		return p.name == name
	})
}

func newID() string {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf[:])
}

func errorf(status int, format string, args ...any) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

func spanName(op string) string {
	return schema.SchemaName + ".dockertest." + op
}

package dockertest_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	// Packages
	dockertest "github.com/mutablelogic/go-docker/pkg/dockertest"
	schema "github.com/mutablelogic/go-docker/pkg/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

func status(t *testing.T, err error) int {
	t.Helper()
	var e *dockertest.Error
	require.True(t, errors.As(err, &e), "got %v", err)
	return e.Status
}

func Test_Registry_predefined(t *testing.T) {
	assert := assert.New(t)
	reg := dockertest.NewRegistry(nil)

	networks, err := reg.List(context.Background(), nil)
	require.NoError(t, err)
	names := make([]string, 0, len(networks))
	for _, network := range networks {
		names = append(names, network.Name)
	}
	assert.Equal([]string{"bridge", "host", "none"}, names)

	err = reg.Remove(context.Background(), "bridge")
	assert.Equal(http.StatusForbidden, status(t, err))
}

func Test_Registry_lifecycle(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	reg := dockertest.NewRegistry(nil)

	created, err := reg.Create(ctx, schema.CreateNetworkOptions{
		Name:   "certs",
		Labels: map[string]string{"env": "test"},
		IPAM: schema.IPAM{
			Config: []schema.IPAMConfig{{Subnet: types.Ptr("172.30.0.0/16")}},
		},
	})
	require.NoError(err)
	assert.Len(created.ID, 64)

	// Duplicate name
	_, err = reg.Create(ctx, schema.CreateNetworkOptions{Name: "certs"})
	assert.Equal(http.StatusConflict, status(t, err))

	// Lookup by name, identifier and prefix
	for _, key := range []string{"certs", created.ID, created.ID[:12]} {
		network, err := reg.Get(ctx, key)
		require.NoError(err, key)
		assert.Equal("certs", network.Name)
		assert.Equal("bridge", network.Driver)
		assert.Equal("default", network.IPAM.Driver)
		assert.Equal("test", network.Labels["env"])
	}

	// Attach and detach
	require.NoError(reg.Connect(ctx, "certs", schema.ConnectNetworkOptions{Container: "web"}))
	err = reg.Connect(ctx, "certs", schema.ConnectNetworkOptions{Container: "web"})
	assert.Equal(http.StatusForbidden, status(t, err))
	err = reg.Remove(ctx, "certs")
	assert.Equal(http.StatusForbidden, status(t, err))
	require.NoError(reg.Disconnect(ctx, "certs", schema.DisconnectNetworkOptions{Container: "web"}))
	err = reg.Disconnect(ctx, "certs", schema.DisconnectNetworkOptions{Container: "web"})
	assert.Equal(http.StatusNotFound, status(t, err))

	// Remove
	require.NoError(reg.Remove(ctx, "certs"))
	_, err = reg.Get(ctx, "certs")
	assert.Equal(http.StatusNotFound, status(t, err))
}

func Test_Registry_copy(t *testing.T) {
	ctx := context.Background()
	reg := dockertest.NewRegistry(nil)
	_, err := reg.Create(ctx, schema.CreateNetworkOptions{Name: "a"})
	require.NoError(t, err)

	network, err := reg.Get(ctx, "a")
	require.NoError(t, err)
	network.Labels["x"] = "y"

	network, err = reg.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, network.Labels)
}

func Test_Registry_filters(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	reg := dockertest.NewRegistry(nil)
	for _, req := range []schema.CreateNetworkOptions{
		{Name: "frontend", Labels: map[string]string{"tier": "web"}},
		{Name: "backend", Driver: "overlay", Labels: map[string]string{"tier": "db"}},
	} {
		_, err := reg.Create(ctx, req)
		require.NoError(t, err)
	}

	tests := []struct {
		filters map[string][]string
		names   []string
	}{
		{map[string][]string{"driver": {"overlay"}}, []string{"backend"}},
		{map[string][]string{"label": {"tier"}}, []string{"backend", "frontend"}},
		{map[string][]string{"label": {"tier=web"}}, []string{"frontend"}},
		{map[string][]string{"name": {"end"}, "driver": {"bridge"}}, []string{"frontend"}},
		{map[string][]string{"name": {"host", "none"}}, []string{"host", "none"}},
	}
	for _, tt := range tests {
		networks, err := reg.List(ctx, tt.filters)
		require.NoError(t, err)
		names := []string{}
		for _, network := range networks {
			names = append(names, network.Name)
		}
		assert.Equal(tt.names, names, "%v", tt.filters)
	}

	_, err := reg.List(ctx, map[string][]string{"bogus": {"x"}})
	assert.Equal(http.StatusBadRequest, status(t, err))
}

func Test_Registry_prune(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	reg := dockertest.NewRegistry(nil)
	for _, name := range []string{"a", "b", "c"} {
		_, err := reg.Create(ctx, schema.CreateNetworkOptions{Name: name, Labels: map[string]string{"keep": name}})
		require.NoError(err)
	}
	require.NoError(reg.Connect(ctx, "a", schema.ConnectNetworkOptions{Container: "web"}))

	result, err := reg.Prune(ctx, map[string][]string{"label": {"keep=b"}})
	require.NoError(err)
	assert.Equal([]string{"b"}, result.NetworksDeleted)

	result, err = reg.Prune(ctx, nil)
	require.NoError(err)
	assert.Equal([]string{"c"}, result.NetworksDeleted)

	result, err = reg.Prune(ctx, nil)
	require.NoError(err)
	assert.Empty(result.NetworksDeleted)
}

package request_test

import (
	"errors"
	"math"
	"net/http"
	"testing"

	// Packages
	docker "github.com/mutablelogic/go-docker"
	query "github.com/mutablelogic/go-docker/pkg/query"
	request "github.com/mutablelogic/go-docker/pkg/request"
	schema "github.com/mutablelogic/go-docker/pkg/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

func Test_Payload_states(t *testing.T) {
	assert := assert.New(t)

	none := request.NoBody()
	assert.False(none.Present())
	assert.Nil(none.Bytes())

	empty := request.EmptyBody()
	assert.True(empty.Present())
	assert.NotNil(empty.Bytes())
	assert.Equal(0, empty.Len())
}

func Test_Payload_JSON(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	payload, err := request.JSON(schema.CreateNetworkOptions{Name: "certs"})
	require.NoError(err)
	assert.True(payload.Present())
	assert.Equal(schema.ContentTypeJSON, payload.ContentType())
	assert.Contains(string(payload.Bytes()), `{"Name":"certs","CheckDuplicate":false,`)
	assert.JSONEq(`{
		"Name": "certs",
		"CheckDuplicate": false,
		"Driver": "",
		"Internal": false,
		"Attachable": false,
		"Ingress": false,
		"IPAM": {"Driver": "", "Config": [], "Options": {}},
		"EnableIPv6": false,
		"Options": {},
		"Labels": {}
	}`, string(payload.Bytes()))
}

func Test_Payload_JSON_optional(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	payload, err := request.JSON(schema.IPAMConfig{Subnet: types.Ptr("10.0.0.0/24")})
	require.NoError(err)
	assert.Equal(`{"Subnet":"10.0.0.0/24"}`, string(payload.Bytes()))
}

func Test_Payload_JSON_nonFinite(t *testing.T) {
	assert := assert.New(t)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := request.JSON(struct {
			Value float64 `json:"Value"`
		}{Value: v})
		var encErr *docker.EncodingError
		assert.True(errors.As(err, &encErr), "expected EncodingError for %v, got %v", v, err)
	}
}

func Test_Build_create(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	payload, err := request.JSON(schema.CreateNetworkOptions{Name: "certs"})
	require.NoError(err)
	d, err := request.Build(http.MethodPost, "/networks/create", nil, nil, payload)
	require.NoError(err)

	assert.Equal(http.MethodPost, d.Method())
	assert.Equal("/networks/create", d.Path())
	assert.Equal("/networks/create", d.RequestURI())
	assert.True(d.HasBody())
	assert.Equal(schema.ContentTypeJSON, d.Header().Get("Content-Type"))
	assert.Equal(payload.Bytes(), d.Body())
}

func Test_Build_remove(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	d, err := request.Build(http.MethodDelete, "/networks/{name}", []string{"my_network_name"}, nil, request.NoBody())
	require.NoError(err)
	assert.Equal("/networks/my_network_name", d.RequestURI())
	assert.False(d.HasBody())
	assert.Nil(d.Body())
	assert.Empty(d.Header().Get("Content-Type"))
	assert.Empty(d.Header().Get("Content-Length"))
	assert.Equal("DELETE /networks/my_network_name", d.String())
}

func Test_Build_inspect(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	opts := &schema.InspectNetworkOptions{Verbose: types.Ptr(true), Scope: types.Ptr("global")}
	d, err := request.Build(http.MethodGet, "/networks/{name}", []string{"my_network_name"}, query.Encode(opts), request.NoBody())
	require.NoError(err)
	assert.Equal("/networks/my_network_name?verbose=true&scope=global", d.RequestURI())
}

func Test_Build_escape(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	d, err := request.Build(http.MethodGet, "/networks/{name}", []string{"a/b c?"}, nil, request.NoBody())
	require.NoError(err)
	assert.Equal("/networks/a%2Fb%20c%3F", d.Path())
}

func Test_Build_emptyBody(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	d, err := request.Build(http.MethodPost, "/networks/prune", nil, nil, request.EmptyBody())
	require.NoError(err)
	assert.True(d.HasBody())
	assert.Equal("0", d.Header().Get("Content-Length"))
	assert.Empty(d.Header().Get("Content-Type"))
}

func Test_Build_errors(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		template string
		args     []string
	}{
		{"missing method", "", "/networks", nil},
		{"missing argument", http.MethodGet, "/networks/{name}", nil},
		{"empty argument", http.MethodGet, "/networks/{name}", []string{""}},
		{"extra argument", http.MethodGet, "/networks", []string{"x"}},
		{"unterminated", http.MethodGet, "/networks/{name", []string{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := request.Build(tt.method, tt.template, tt.args, nil, request.NoBody())
			var encErr *docker.EncodingError
			assert.True(t, errors.As(err, &encErr), "got %v", err)
		})
	}
}

func Test_Build_deterministic(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	build := func() *request.Descriptor {
		payload, err := request.JSON(schema.CreateNetworkOptions{
			Name:   "certs",
			Labels: map[string]string{"z": "1", "a": "2", "m": "3"},
		})
		require.NoError(err)
		q := query.New(2).With("scope", "local").WithBool("verbose", false)
		d, err := request.Build(http.MethodPost, "/networks/{name}", []string{"certs"}, q, payload)
		require.NoError(err)
		return d
	}
	a, b := build(), build()
	assert.Equal(a, b)
	assert.True(a.Equal(b))
	assert.Equal(a.Body(), b.Body())
}

func Test_Build_immutable(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	q := query.New(1).With("scope", "local")
	d, err := request.Build(http.MethodGet, "/networks", nil, q, request.NoBody())
	require.NoError(err)

	q[0].Value = "swarm"
	d.Header().Set("Accept", "text/plain")
	d.Query()[0].Value = "global"

	assert.Equal("/networks?scope=local", d.RequestURI())
	assert.Equal(schema.ContentTypeJSON, d.Header().Get("Accept"))
}

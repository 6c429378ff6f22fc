package response_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	// Packages
	docker "github.com/mutablelogic/go-docker"
	response "github.com/mutablelogic/go-docker/pkg/response"
	schema "github.com/mutablelogic/go-docker/pkg/schema"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

func newResponse(status int, body string) *response.Response {
	return &response.Response{
		Status: status,
		Header: http.Header{"Content-Type": []string{schema.ContentTypeJSON}},
		Body:   []byte(body),
	}
}

func Test_Decode_create(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	result, err := response.Decode[schema.CreateNetworkResults](newResponse(http.StatusCreated, `{"Id":"abc123","Warning":""}`))
	require.NoError(err)
	assert.Equal(schema.CreateNetworkResults{ID: "abc123", Warning: ""}, *result)
}

func Test_Decode_unknownField(t *testing.T) {
	bodies := []string{
		`{"Id":"abc123","Warning":"","Extra":1}`,
		`{"Id":"abc123","warning":""}`,
		`{"id":"abc123","Warning":""}`,
	}
	for _, body := range bodies {
		_, err := response.Decode[schema.CreateNetworkResults](newResponse(http.StatusOK, body))
		var decodeErr *docker.DecodeError
		require.True(t, errors.As(err, &decodeErr), "body %s: got %v", body, err)
		assert.Equal(t, http.StatusOK, decodeErr.Status)

		var apiErr *docker.APIError
		assert.False(t, errors.As(err, &apiErr))
	}
}

func Test_Decode_nestedUnknownField(t *testing.T) {
	body := `{
		"Name": "bridge", "Id": "f2de39df", "Created": "2016-10-19T06:21:00Z",
		"Scope": "local", "Driver": "bridge", "EnableIPv6": false,
		"IPAM": {"Driver": "default", "Config": [{"Subnet": "172.17.0.0/16", "Bogus": "x"}], "Options": {}},
		"Internal": false, "Attachable": false, "Ingress": false,
		"Containers": {}, "Options": {}, "Labels": {}, "ConfigFrom": {}, "ConfigOnly": false
	}`
	_, err := response.Decode[schema.InspectNetworkResults](newResponse(http.StatusOK, body))
	var decodeErr *docker.DecodeError
	assert.True(t, errors.As(err, &decodeErr), "got %v", err)
}

func Test_Decode_inspect(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	body := `{
		"Name": "net01", "Id": "7d86d31b1478", "Created": "2016-10-19T04:33:30.360899459Z",
		"Scope": "local", "Driver": "bridge", "EnableIPv6": false,
		"IPAM": {"Driver": "default", "Config": [{"Subnet": "172.19.0.0/16", "Gateway": "172.19.0.1"}], "Options": {"foo": "bar"}},
		"Internal": false, "Attachable": false, "Ingress": false,
		"Containers": {
			"19a4d5d687db": {
				"Name": "test", "EndpointID": "628cadb8bcb9", "MacAddress": "02:42:ac:13:00:02",
				"IPv4Address": "172.19.0.2/16", "IPv6Address": ""
			}
		},
		"Options": {"com.docker.network.bridge.default_bridge": "true"},
		"Labels": {"com.example.some-label": "some-value"},
		"ConfigFrom": {"Network": ""},
		"ConfigOnly": false
	}`
	result, err := response.Decode[schema.InspectNetworkResults](newResponse(http.StatusOK, body))
	require.NoError(err)
	assert.Equal("net01", result.Name)
	assert.Equal("7d86d31b1478", result.ID)
	require.Len(result.IPAM.Config, 1)
	require.NotNil(result.IPAM.Config[0].Gateway)
	assert.Equal("172.19.0.1", *result.IPAM.Config[0].Gateway)
	assert.Nil(result.IPAM.Config[0].IPRange)
	assert.Equal("628cadb8bcb9", result.Containers["19a4d5d687db"].EndpointID)
	assert.Equal("172.19.0.2/16", result.Containers["19a4d5d687db"].IPv4Address)
}

func Test_Decode_slice(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	result, err := response.Decode[[]schema.CreateNetworkResults](newResponse(http.StatusOK, `[{"Id":"a","Warning":""},{"Id":"b","Warning":"w"}]`))
	require.NoError(err)
	assert.Len(*result, 2)
	assert.Equal("w", (*result)[1].Warning)
}

func Test_Decode_malformed(t *testing.T) {
	bodies := []string{"", "   ", "not json", `{"Id":"a"`, `{"Id":"a","Warning":""} trailing`, `[]`, "null", " null\n", "{}", `{"Id":"a"}`}
	for _, body := range bodies {
		_, err := response.Decode[schema.CreateNetworkResults](newResponse(http.StatusOK, body))
		var decodeErr *docker.DecodeError
		assert.True(t, errors.As(err, &decodeErr), "body %q: got %v", body, err)
	}
}

func Test_Decode_required(t *testing.T) {
	assert := assert.New(t)

	_, err := response.Decode[schema.CreateNetworkResults](newResponse(http.StatusCreated, "null"))
	assert.ErrorIs(err, response.ErrNullResult)
	_, err = response.Decode[schema.CreateNetworkResults](newResponse(http.StatusCreated, "nothing"))
	assert.NotErrorIs(err, response.ErrNullResult)

	_, err = response.Decode[schema.CreateNetworkResults](newResponse(http.StatusCreated, `{"Warning":""}`))
	assert.ErrorIs(err, response.ErrMissingMember)
	assert.ErrorContains(err, `"Id"`)

	// Missing members inside nested objects and slices
	_, err = response.Decode[[]schema.CreateNetworkResults](newResponse(http.StatusOK, `[{"Id":"a","Warning":""},{"Id":"b"}]`))
	assert.ErrorIs(err, response.ErrMissingMember)
	assert.ErrorContains(err, `[1].Warning`)

	body := `{
		"Name": "net01", "Id": "7d86", "Created": "", "Scope": "local", "Driver": "bridge", "EnableIPv6": false,
		"IPAM": {"Driver": "default", "Config": [{"Subnet": "172.19.0.0/16"}]},
		"Internal": false, "Attachable": false, "Ingress": false,
		"Containers": {}, "Options": {}, "Labels": {}, "ConfigFrom": {}, "ConfigOnly": false
	}`
	_, err = response.Decode[schema.InspectNetworkResults](newResponse(http.StatusOK, body))
	assert.ErrorIs(err, response.ErrMissingMember)
	assert.ErrorContains(err, "IPAM.Options")

	// Optional members may be absent, and null members are present
	result, err := response.Decode[schema.InspectNetworkResults](newResponse(http.StatusOK, strings.Replace(body, `"Config"`, `"Options": null, "Config"`, 1)))
	require.NoError(t, err)
	assert.Nil(result.IPAM.Config[0].Gateway)

	// An empty list has no members to check
	_, err = response.Decode[[]schema.CreateNetworkResults](newResponse(http.StatusOK, `[]`))
	assert.NoError(err)
}

func Test_Decode_unexpectedStatus(t *testing.T) {
	_, err := response.Decode[schema.CreateNetworkResults](newResponse(http.StatusNotModified, ""))
	assert.ErrorIs(t, err, response.ErrUnexpectedStatus)
}

func Test_DecodeUnit(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNoContent, http.StatusCreated, http.StatusAccepted} {
		for _, body := range []string{"", "\n", "  ", "removed", `{"Id":"x","Extra":true}`} {
			assert.NoError(t, response.DecodeUnit(newResponse(status, body)), "status %d body %q", status, body)
		}
	}
}

func Test_APIError_message(t *testing.T) {
	assert := assert.New(t)

	err := response.DecodeUnit(newResponse(http.StatusNotFound, `{"message":"network not found"}`))
	var apiErr *docker.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(http.StatusNotFound, apiErr.Status)
	assert.Equal("network not found", apiErr.Message)
	assert.True(apiErr.IsNotFound())
	assert.True(docker.IsNotFound(err))
}

func Test_APIError_fallback(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		message string
	}{
		{http.StatusInternalServerError, "boom", "Internal Server Error: boom"},
		{http.StatusConflict, "", "Conflict"},
		{http.StatusBadRequest, `{"message":""}`, `Bad Request: {"message":""}`},
		{http.StatusServiceUnavailable, `<html>down</html>`, "Service Unavailable: <html>down</html>"},
		{499, "", "unknown error"},
	}
	for _, tt := range tests {
		_, err := response.Decode[schema.CreateNetworkResults](newResponse(tt.status, tt.body))
		var apiErr *docker.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, tt.status, apiErr.Status)
		assert.Equal(t, tt.message, apiErr.Message)
		assert.Equal(t, tt.body, apiErr.Body)
	}
}

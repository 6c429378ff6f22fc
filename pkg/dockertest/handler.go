package dockertest

import (
	"errors"
	"net/http"

	// Packages
	json "github.com/go-json-experiment/json"
	schema "github.com/mutablelogic/go-docker/pkg/schema"
	httprequest "github.com/mutablelogic/go-server/pkg/httprequest"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	openapi "github.com/mutablelogic/go-server/pkg/openapi/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type inspectQuery struct {
	Verbose bool   `json:"verbose,omitempty"`
	Scope   string `json:"scope,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// HANDLER FUNCTIONS

// Path: /networks
// GET lists networks.
func NetworkListHandler(reg *Registry) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/networks", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				_ = networkList(w, r, reg)
			default:
				_ = methodNotAllowed(w, r)
			}
		}, types.Ptr(openapi.PathItem{
			Get: &openapi.Operation{
				Description: "List networks, optionally filtered",
			},
		})
}

// Path: /networks/create
// POST creates a network.
func NetworkCreateHandler(reg *Registry) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/networks/create", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				_ = networkCreate(w, r, reg)
			default:
				_ = methodNotAllowed(w, r)
			}
		}, types.Ptr(openapi.PathItem{
			Post: &openapi.Operation{
				Description: "Create a network",
			},
		})
}

// Path: /networks/prune
// POST removes unused networks.
func NetworkPruneHandler(reg *Registry) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/networks/prune", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				_ = networkPrune(w, r, reg)
			default:
				_ = methodNotAllowed(w, r)
			}
		}, types.Ptr(openapi.PathItem{
			Post: &openapi.Operation{
				Description: "Remove unused networks",
			},
		})
}

// Path: /networks/{id}
// GET inspects a network, DELETE removes it.
func NetworkHandler(reg *Registry) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/networks/{id}", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				_ = networkInspect(w, r, reg)
			case http.MethodDelete:
				_ = networkRemove(w, r, reg)
			default:
				_ = methodNotAllowed(w, r)
			}
		}, types.Ptr(openapi.PathItem{
			Get: &openapi.Operation{
				Description: "Inspect a network",
			},
			Delete: &openapi.Operation{
				Description: "Remove a network",
			},
		})
}

// Path: /networks/{id}/connect
// POST attaches a container.
func NetworkConnectHandler(reg *Registry) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/networks/{id}/connect", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				_ = networkConnect(w, r, reg)
			default:
				_ = methodNotAllowed(w, r)
			}
		}, types.Ptr(openapi.PathItem{
			Post: &openapi.Operation{
				Description: "Connect a container to a network",
			},
		})
}

// Path: /networks/{id}/disconnect
// POST detaches a container.
func NetworkDisconnectHandler(reg *Registry) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/networks/{id}/disconnect", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				_ = networkDisconnect(w, r, reg)
			default:
				_ = methodNotAllowed(w, r)
			}
		}, types.Ptr(openapi.PathItem{
			Post: &openapi.Operation{
				Description: "Disconnect a container from a network",
			},
		})
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func networkList(w http.ResponseWriter, r *http.Request, reg *Registry) error {
	filters, err := readFilters(r)
	if err != nil {
		return writeError(w, r, err)
	}
	networks, err := reg.List(r.Context(), filters)
	if err != nil {
		return writeError(w, r, err)
	}
	return httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), networks)
}

func networkCreate(w http.ResponseWriter, r *http.Request, reg *Registry) error {
	var req schema.CreateNetworkOptions
	if err := httprequest.Read(r, &req); err != nil {
		return writeError(w, r, errorf(http.StatusBadRequest, "%v", err))
	}
	result, err := reg.Create(r.Context(), req)
	if err != nil {
		return writeError(w, r, err)
	}
	return httpresponse.JSON(w, http.StatusCreated, httprequest.Indent(r), result)
}

func networkPrune(w http.ResponseWriter, r *http.Request, reg *Registry) error {
	filters, err := readFilters(r)
	if err != nil {
		return writeError(w, r, err)
	}
	result, err := reg.Prune(r.Context(), filters)
	if err != nil {
		return writeError(w, r, err)
	}
	return httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), result)
}

func networkInspect(w http.ResponseWriter, r *http.Request, reg *Registry) error {
	var req inspectQuery
	if err := httprequest.Query(r.URL.Query(), &req); err != nil {
		return writeError(w, r, errorf(http.StatusBadRequest, "%v", err))
	}
	network, err := reg.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		return writeError(w, r, err)
	}
	if req.Scope != "" && req.Scope != network.Scope {
		return writeError(w, r, errorf(http.StatusNotFound, "network %s not found", r.PathValue("id")))
	}
	return httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), network)
}

func networkRemove(w http.ResponseWriter, r *http.Request, reg *Registry) error {
	if err := reg.Remove(r.Context(), r.PathValue("id")); err != nil {
		return writeError(w, r, err)
	}
	return httpresponse.Empty(w, http.StatusNoContent)
}

func networkConnect(w http.ResponseWriter, r *http.Request, reg *Registry) error {
	var req schema.ConnectNetworkOptions
	if err := httprequest.Read(r, &req); err != nil {
		return writeError(w, r, errorf(http.StatusBadRequest, "%v", err))
	}
	if err := reg.Connect(r.Context(), r.PathValue("id"), req); err != nil {
		return writeError(w, r, err)
	}
	return httpresponse.Empty(w, http.StatusOK)
}

func networkDisconnect(w http.ResponseWriter, r *http.Request, reg *Registry) error {
	var req schema.DisconnectNetworkOptions
	if err := httprequest.Read(r, &req); err != nil {
		return writeError(w, r, errorf(http.StatusBadRequest, "%v", err))
	}
	if err := reg.Disconnect(r.Context(), r.PathValue("id"), req); err != nil {
		return writeError(w, r, err)
	}
	return httpresponse.Empty(w, http.StatusOK)
}

// readFilters decodes the JSON-valued filters parameter, if present.
func readFilters(r *http.Request) (map[string][]string, error) {
	value := r.URL.Query().Get("filters")
	if value == "" {
		return nil, nil
	}
	var filters map[string][]string
	if err := json.Unmarshal([]byte(value), &filters); err != nil {
		return nil, errorf(http.StatusBadRequest, "invalid filters: %v", err)
	}
	return filters, nil
}

// writeError responds with the daemon's error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) error {
	status := http.StatusInternalServerError
	var e *Error
	if errors.As(err, &e) {
		status = e.Status
	}
	return httpresponse.JSON(w, status, httprequest.Indent(r), schema.ErrorResponse{Message: err.Error()})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) error {
	return writeError(w, r, errorf(http.StatusMethodNotAllowed, "method %s not allowed", r.Method))
}

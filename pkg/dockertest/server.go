// Package dockertest provides an in-memory daemon serving the network
// endpoints over HTTP, for testing clients without a docker installation.
//
// Start a daemon in a test with:
//
//	srv := dockertest.New(t)
//	c, err := client.New(srv.URL)
//
// Error responses carry the daemon's {"message": ...} body. Requests with an
// API version prefix such as /v1.41 are served as if unversioned.
package dockertest

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"slices"
	"sync"
	"testing"

	// Packages
	openapi "github.com/mutablelogic/go-server/pkg/openapi/schema"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Router is the interface required to register HTTP handlers.
type Router interface {
	RegisterFunc(path string, handler http.HandlerFunc, spec *openapi.PathItem) error
}

// Server is a running in-memory daemon.
type Server struct {
	*httptest.Server
	*Registry

	mu       sync.Mutex
	mux      *http.ServeMux
	paths    map[string]*openapi.PathItem
	requests []string
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

var reVersion = regexp.MustCompile(`^/v[0-9]+\.[0-9]+(/|$)`)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New starts a daemon which is closed when the test ends. The tracer may be
// nil.
func New(t testing.TB, tracer ...trace.Tracer) *Server {
	t.Helper()

	var tr trace.Tracer
	if len(tracer) > 0 {
		tr = tracer[0]
	}
	srv := &Server{
		Registry: NewRegistry(tr),
		mux:      http.NewServeMux(),
		paths:    make(map[string]*openapi.PathItem),
	}
	if err := RegisterHandlers(srv.Registry, srv); err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	srv.Server = httptest.NewServer(http.HandlerFunc(srv.serveHTTP))
	t.Cleanup(srv.Close)
	return srv
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// RegisterHandlers registers the network handlers on the router.
func RegisterHandlers(reg *Registry, router Router) error {
	var result error
	register := func(path string, handler http.HandlerFunc, spec *openapi.PathItem) {
		result = errors.Join(result, router.RegisterFunc(path, handler, spec))
	}
	register(NetworkListHandler(reg))
	register(NetworkCreateHandler(reg))
	register(NetworkPruneHandler(reg))
	register(NetworkHandler(reg))
	register(NetworkConnectHandler(reg))
	register(NetworkDisconnectHandler(reg))
	return result
}

// RegisterFunc adds a handler for path.
func (srv *Server) RegisterFunc(path string, handler http.HandlerFunc, spec *openapi.PathItem) error {
	if _, exists := srv.paths[path]; exists {
		return fmt.Errorf("duplicate path %q", path)
	}
	srv.paths[path] = spec
	srv.mux.HandleFunc(path, handler)
	return nil
}

// Path returns the description of the operations served at path, or nil.
func (srv *Server) Path(path string) *openapi.PathItem {
	return srv.paths[path]
}

// Requests returns the method and request URI of every request received, in
// order, such as "GET /networks/bridge?verbose=true".
func (srv *Server) Requests() []string {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return slices.Clone(srv.requests)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (srv *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	srv.mu.Lock()
	srv.requests = append(srv.requests, r.Method+" "+r.URL.RequestURI())
	srv.mu.Unlock()

	// Serve versioned paths as unversioned
	escaped := r.URL.EscapedPath()
	if loc := reVersion.FindStringIndex(escaped); loc != nil {
		raw := "/" + escaped[loc[1]:]
		path, err := url.PathUnescape(raw)
		if err != nil {
			_ = writeError(w, r, errorf(http.StatusBadRequest, "invalid path %q", raw))
			return
		}
		r2 := r.Clone(r.Context())
		r2.URL.Path = path
		r2.URL.RawPath = raw
		r = r2
	}
	srv.mux.ServeHTTP(w, r)
}

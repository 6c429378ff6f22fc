package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	// Packages
	client "github.com/mutablelogic/go-client"
	docker "github.com/mutablelogic/go-docker"
	request "github.com/mutablelogic/go-docker/pkg/request"
	response "github.com/mutablelogic/go-docker/pkg/response"
	schema "github.com/mutablelogic/go-docker/pkg/schema"
	version "github.com/mutablelogic/go-docker/pkg/version"
	otel "go.opentelemetry.io/otel"
	attribute "go.opentelemetry.io/otel/attribute"
	metric "go.opentelemetry.io/otel/metric"
	rate "golang.org/x/time/rate"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// HTTP sends descriptors over HTTP to a daemon listening on TCP or on a unix
// socket. It is safe for concurrent use.
type HTTP struct {
	client    *client.Client
	endpoint  *url.URL
	socket    string
	limiter   *rate.Limiter
	userAgent string
	requests  metric.Int64Counter
	duration  metric.Float64Histogram
}

var _ Transport = (*HTTP)(nil)

///////////////////////////////////////////////////////////////////////////////
// CONSTANTS

const (
	// socketHost is the placeholder host used in URLs for unix socket requests
	socketHost = "docker"

	metricRequests = "docker.client.requests"
	metricDuration = "docker.client.duration"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewHTTP returns a transport for host, which is one of:
//
//	unix:///var/run/docker.sock
//	tcp://127.0.0.1:2375
//	http://127.0.0.1:2375
//	https://docker.example.com:2376
func NewHTTP(host string, opt ...Opt) (*HTTP, error) {
	o, err := applyOpts(opt)
	if err != nil {
		return nil, err
	}
	endpoint, socket, err := ParseHost(host)
	if err != nil {
		return nil, err
	}

	// Create the base client
	clientOpts := []client.ClientOpt{client.OptEndpoint(endpoint.String())}
	if o.timeout > 0 {
		clientOpts = append(clientOpts, client.OptTimeout(o.timeout))
	}
	if o.trace != nil {
		clientOpts = append(clientOpts, client.OptTrace(o.trace, o.verbose))
	}
	cl, err := client.New(clientOpts...)
	if err != nil {
		return nil, err
	}
	if socket != "" {
		cl.Client.Transport = socketTransport(cl.Client.Transport, socket)
	}

	// Instruments
	meter := o.meter
	if meter == nil {
		meter = otel.Meter(schema.SchemaName)
	}
	requests, err := meter.Int64Counter(metricRequests,
		metric.WithDescription("Number of requests sent to the daemon"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(metricDuration,
		metric.WithDescription("Duration of round trips to the daemon"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	userAgent := o.userAgent
	if userAgent == "" {
		userAgent = version.UserAgent()
	}

	return &HTTP{
		client:    cl,
		endpoint:  endpoint,
		socket:    socket,
		limiter:   o.limiter,
		userAgent: userAgent,
		requests:  requests,
		duration:  duration,
	}, nil
}

// Close releases idle connections.
func (t *HTTP) Close() error {
	t.client.Client.CloseIdleConnections()
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ParseHost returns the HTTP endpoint for a daemon host, and the socket path
// when the host is a unix socket.
func ParseHost(host string) (*url.URL, string, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, "", fmt.Errorf("invalid host %q: %w", host, err)
	}
	switch u.Scheme {
	case "unix":
		if u.Path == "" {
			return nil, "", fmt.Errorf("invalid host %q: missing socket path", host)
		}
		return &url.URL{Scheme: "http", Host: socketHost}, u.Path, nil
	case "tcp":
		if u.Host == "" {
			return nil, "", fmt.Errorf("invalid host %q: missing address", host)
		}
		return &url.URL{Scheme: "http", Host: u.Host, Path: strings.TrimSuffix(u.Path, "/")}, "", nil
	case "http", "https":
		if u.Host == "" {
			return nil, "", fmt.Errorf("invalid host %q: missing address", host)
		}
		return &url.URL{Scheme: u.Scheme, Host: u.Host, Path: strings.TrimSuffix(u.Path, "/")}, "", nil
	default:
		return nil, "", fmt.Errorf("invalid host %q: unsupported scheme %q", host, u.Scheme)
	}
}

// Endpoint returns the base URL requests are sent to.
func (t *HTTP) Endpoint() string {
	return t.endpoint.String()
}

// RoundTrip sends the request and reads the whole response body. It makes
// exactly one attempt.
func (t *HTTP) RoundTrip(ctx context.Context, req *request.Descriptor) (*response.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, &docker.TransportError{Method: req.Method(), Path: req.Path(), Err: err}
		}
	}

	// Make the request
	var body io.Reader
	if req.HasBody() {
		body = bytes.NewReader(req.Body())
	}
	r, err := http.NewRequestWithContext(ctx, req.Method(), t.endpoint.String()+req.RequestURI(), body)
	if err != nil {
		return nil, &docker.EncodingError{Err: err}
	}
	r.Header = req.Header()
	r.Header.Set("User-Agent", t.userAgent)

	// Send the request and read the response
	start := time.Now()
	resp, err := t.client.Client.Do(r)
	if err != nil {
		t.record(ctx, req.Method(), 0, start)
		return nil, &docker.TransportError{Method: req.Method(), Path: req.Path(), Err: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	t.record(ctx, req.Method(), resp.StatusCode, start)
	if err != nil {
		return nil, &docker.TransportError{Method: req.Method(), Path: req.Path(), Err: err}
	}

	return &response.Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   data,
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (t *HTTP) record(ctx context.Context, method string, status int, start time.Time) {
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.status_code", strconv.Itoa(status)),
	)
	t.requests.Add(ctx, 1, attrs)
	t.duration.Record(ctx, time.Since(start).Seconds(), attrs)
}

// socketTransport returns a transport which dials the unix socket for every
// connection, keeping any settings of the existing transport.
func socketTransport(rt http.RoundTripper, socket string) http.RoundTripper {
	var tr *http.Transport
	if existing, ok := rt.(*http.Transport); ok && existing != nil {
		tr = existing.Clone()
	} else {
		tr = http.DefaultTransport.(*http.Transport).Clone()
	}
	tr.Proxy = nil
	tr.ForceAttemptHTTP2 = false
	tr.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
	tr.DialContext = func(ctx context.Context, _, _ string) (net.Conn, error) {
		var dialer net.Dialer
		return dialer.DialContext(ctx, "unix", socket)
	}
	return tr
}

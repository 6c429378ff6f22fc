package client

import (
	"fmt"
	"strconv"
	"strings"

	// Packages
	transport "github.com/mutablelogic/go-docker/pkg/transport"
	zerolog "github.com/rs/zerolog"
	trace "go.opentelemetry.io/otel/trace"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Opt is a functional option for a client session.
type Opt func(*opts) error

type opts struct {
	logger     zerolog.Logger
	tracer     trace.Tracer
	prefix     string
	transports []transport.Opt
}

////////////////////////////////////////////////////////////////////////////////
// OPTIONS

// OptLogger sets the logger. Each call is logged at debug level.
func OptLogger(logger zerolog.Logger) Opt {
	return func(o *opts) error {
		o.logger = logger
		return nil
	}
}

// OptTracer sets the tracer used to open a span for each call.
func OptTracer(tracer trace.Tracer) Opt {
	return func(o *opts) error {
		o.tracer = tracer
		return nil
	}
}

// OptAPIVersion pins requests to a daemon API version, such as "1.41", by
// prefixing every path with "/v1.41". An empty version removes the prefix.
func OptAPIVersion(version string) Opt {
	return func(o *opts) error {
		version = strings.TrimPrefix(strings.TrimSpace(version), "v")
		if version == "" {
			o.prefix = ""
			return nil
		}
		if !ValidAPIVersion(version) {
			return fmt.Errorf("invalid API version %q", version)
		}
		o.prefix = "/v" + version
		return nil
	}
}

// OptTransport passes options to the HTTP transport created by New. They are
// ignored by NewWithTransport.
func OptTransport(opt ...transport.Opt) Opt {
	return func(o *opts) error {
		o.transports = append(o.transports, opt...)
		return nil
	}
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ValidAPIVersion reports whether version has the form "major.minor".
func ValidAPIVersion(version string) bool {
	major, minor, ok := strings.Cut(version, ".")
	if !ok {
		return false
	}
	for _, part := range []string{major, minor} {
		if part == "" || strings.TrimLeft(part, "0123456789") != "" {
			return false
		}
		if _, err := strconv.ParseUint(part, 10, 32); err != nil {
			return false
		}
	}
	return true
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func applyOpts(opt []Opt) (opts, error) {
	// Set defaults
	o := opts{
		logger: zerolog.Nop(),
	}

	// Apply options
	for _, fn := range opt {
		if err := fn(&o); err != nil {
			return opts{}, err
		}
	}

	// Return success
	return o, nil
}

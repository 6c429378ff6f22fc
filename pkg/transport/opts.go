package transport

import (
	"fmt"
	"io"
	"time"

	// Packages
	metric "go.opentelemetry.io/otel/metric"
	rate "golang.org/x/time/rate"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Opt is a functional option for the HTTP transport.
type Opt func(*opts) error

type opts struct {
	timeout   time.Duration
	trace     io.Writer
	verbose   bool
	limiter   *rate.Limiter
	meter     metric.Meter
	userAgent string
}

////////////////////////////////////////////////////////////////////////////////
// OPTIONS

// OptTimeout sets the timeout for each round trip, including reading the
// response body. Zero means no timeout.
func OptTimeout(timeout time.Duration) Opt {
	return func(o *opts) error {
		if timeout < 0 {
			return fmt.Errorf("invalid timeout %v", timeout)
		}
		o.timeout = timeout
		return nil
	}
}

// OptTrace writes each request and response to w. When verbose is true the
// bodies are included.
func OptTrace(w io.Writer, verbose bool) Opt {
	return func(o *opts) error {
		o.trace = w
		o.verbose = verbose
		return nil
	}
}

// OptRateLimit limits requests to rps per second with the given burst. A call
// waits for a token before it is sent; it is never retried.
func OptRateLimit(rps float64, burst int) Opt {
	return func(o *opts) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("invalid rate limit %v/s burst %d", rps, burst)
		}
		o.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		return nil
	}
}

// OptMeter sets the meter used to record request counts and durations. The
// global meter provider is used otherwise.
func OptMeter(meter metric.Meter) Opt {
	return func(o *opts) error {
		o.meter = meter
		return nil
	}
}

// OptUserAgent sets the User-Agent header sent with every request.
func OptUserAgent(value string) Opt {
	return func(o *opts) error {
		o.userAgent = value
		return nil
	}
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func applyOpts(opt []Opt) (opts, error) {
	o := opts{}
	for _, fn := range opt {
		if err := fn(&o); err != nil {
			return opts{}, err
		}
	}
	return o, nil
}

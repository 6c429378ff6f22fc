// Package version reports the build version of the client, which is sent to
// the daemon in the User-Agent header.
package version

import (
	"runtime"
	"runtime/debug"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Set with -ldflags at build time
var (
	GitTag      string
	GitBranch   string
	GitHash     string
	GoBuildTime string
)

const (
	// Product is the product token in the User-Agent header
	Product = "go-docker"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Version returns the best available version string. It prefers the git tag
// set via -ldflags, then the branch, then the short VCS revision from the
// embedded build info, and finally falls back to "dev".
func Version() string {
	if GitTag != "" {
		return GitTag
	}
	if GitBranch != "" {
		return GitBranch
	}
	if rev := revision(); rev != "" {
		if len(rev) > 12 {
			return rev[:12]
		}
		return rev
	}
	return "dev"
}

// UserAgent returns the User-Agent header value, for example
// "go-docker/v1.0.0 (go1.26.0; linux/amd64)".
func UserAgent() string {
	var sb strings.Builder
	sb.WriteString(Product)
	sb.WriteString("/")
	sb.WriteString(strings.TrimSpace(Version()))
	sb.WriteString(" (")
	sb.WriteString(runtime.Version())
	sb.WriteString("; ")
	sb.WriteString(runtime.GOOS)
	sb.WriteString("/")
	sb.WriteString(runtime.GOARCH)
	sb.WriteString(")")
	return sb.String()
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func revision() string {
	if GitHash != "" {
		return GitHash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return ""
}

package schema

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	SchemaName = "docker"

	// Content types
	ContentTypeJSON = "application/json"

	// Default daemon host
	DefaultHost = "unix:///var/run/docker.sock"
)

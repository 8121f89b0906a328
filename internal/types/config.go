package types

type RunMode string

const (
	// ModeLocal runs the API server with in-memory collaborators
	ModeLocal RunMode = "local"
	// ModeAPI runs the API server against the configured postgres and s3 collaborators
	ModeAPI RunMode = "api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

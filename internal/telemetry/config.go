package telemetry

import "io"

// Config holds configuration for the tracer
type Config struct {
	// ServiceName is the name of the service
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// Enabled determines whether tracing is enabled
	// When false, a noop tracer is used
	Enabled bool

	// Endpoint is the OTLP/HTTP collector endpoint (optional)
	Endpoint string

	// Writer receives finished spans as JSON lines when set
	Writer io.Writer

	// SampleRate is the fraction of traces to sample (0.0 to 1.0)
	SampleRate float64
}

// DefaultConfig returns a configuration with tracing disabled
func DefaultConfig() Config {
	return Config{
		ServiceName:    "miow",
		ServiceVersion: "dev",
		Enabled:        false,
		SampleRate:     1.0,
	}
}

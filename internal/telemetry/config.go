package telemetry

import (
	"os"
	"strings"
)

// Config holds telemetry settings
type Config struct {
	ServiceName    string
	ServiceVersion string

	// Enabled is false when the user opted out via AZURE_MCP_COLLECT_TELEMETRY=false
	Enabled bool

	// OTLPEndpoint is a host:port gRPC collector endpoint; empty disables export
	OTLPEndpoint string

	// Application Insights ingestion settings parsed from a key or connection string
	InstrumentationKey string
	IngestionEndpoint  string
}

// NewConfig creates a telemetry configuration from the environment
func NewConfig(serviceName, serviceVersion string) *Config {
	cfg := &Config{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Enabled:        !strings.EqualFold(os.Getenv("AZURE_MCP_COLLECT_TELEMETRY"), "false"),
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
	return cfg
}

// SetOTLPEndpoint overrides the OTLP endpoint
func (c *Config) SetOTLPEndpoint(endpoint string) {
	c.OTLPEndpoint = endpoint
}

// SetAppInsightsKey accepts either a bare instrumentation key or a full
// connection string ("InstrumentationKey=...;IngestionEndpoint=...").
func (c *Config) SetAppInsightsKey(value string) {
	value = strings.TrimSpace(value)
	if !strings.Contains(value, "=") {
		c.InstrumentationKey = value
		return
	}

	for _, part := range strings.Split(value, ";") {
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "instrumentationkey":
			c.InstrumentationKey = strings.TrimSpace(val)
		case "ingestionendpoint":
			c.IngestionEndpoint = strings.TrimSuffix(strings.TrimSpace(val), "/") + "/v2/track"
		}
	}
}

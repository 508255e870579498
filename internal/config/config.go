package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Azure/azure-mcp/internal/logger"
	"github.com/Azure/azure-mcp/internal/telemetry"
	"github.com/Azure/azure-mcp/internal/version"
	"github.com/cockroachdb/errors"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable that mirrors a flag,
// e.g. --access-level is read from AZURE_MCP_ACCESS_LEVEL.
const EnvPrefix = "AZURE_MCP"

// Access levels
const (
	AccessLevelReadOnly  = "readonly"
	AccessLevelReadWrite = "readwrite"
	AccessLevelAdmin     = "admin"
)

// Error modes
const (
	// ErrorModeFamily keeps each tool family's own error policy: App Service
	// and VM tools raise, Key Vault and Storage tools return {error}.
	ErrorModeFamily = "family"
	// ErrorModeTagged turns raised errors into {error} results as well.
	ErrorModeTagged = "tagged"
)

// ConfigData holds the global configuration
type ConfigData struct {
	// Tool call timeout in seconds
	Timeout int

	// Command-line specific options
	Transport   string
	Host        string
	Port        int
	AccessLevel string

	// Components to register, empty means all
	EnabledComponents []string

	// Error reporting
	ErrorMode       string
	HideStackTraces bool

	// Verbose logging
	Verbose bool

	// OTLP endpoint for OpenTelemetry traces
	OTLPEndpoint string
	// Application Insights instrumentation key (or connection string)
	AppInsightsKey string

	// Telemetry service
	TelemetryService *telemetry.Service

	// Authentication configuration
	Auth *AuthConfig

	ShowHelp    bool
	ShowVersion bool
}

// NewConfig creates and returns a new configuration instance
func NewConfig() *ConfigData {
	return &ConfigData{
		Timeout:     600,
		Transport:   "stdio",
		Host:        "127.0.0.1",
		Port:        8000,
		AccessLevel: AccessLevelReadWrite,
		ErrorMode:   ErrorModeFamily,
		Auth:        NewAuthConfig(),
	}
}

// newFlagSet declares every flag with the current values as defaults
func (cfg *ConfigData) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	// Server configuration
	fs.String("transport", cfg.Transport, "Transport mechanism to use (stdio, sse or streamable-http)")
	fs.String("host", cfg.Host, "Host to listen for the server (only used with transport sse or streamable-http)")
	fs.Int("port", cfg.Port, "Port to listen for the server (only used with transport sse or streamable-http)")
	fs.Int("timeout", cfg.Timeout, "Timeout for a single tool call in seconds")

	// Tool surface
	fs.String("access-level", cfg.AccessLevel, "Access level (readonly, readwrite, admin)")
	fs.String("enabled-components", strings.Join(cfg.EnabledComponents, ","),
		"Comma-separated list of components to enable (empty means all). Available: appservice,keyvault,storage,compute")
	fs.String("error-mode", cfg.ErrorMode,
		"Error reporting: 'family' keeps each tool family's policy, 'tagged' always returns {error} results")
	fs.Bool("hide-stack-traces", cfg.HideStackTraces, "Omit stack traces from storage tool error results")

	// Authentication settings
	fs.Bool("auth-enabled", cfg.Auth.Enabled, "Enable authentication")
	fs.String("auth-client-id", cfg.Auth.EntraClientID, "Entra ID client ID")
	fs.String("auth-tenant-id", cfg.Auth.EntraTenantID, "Entra ID tenant ID")
	fs.String("auth-authority", cfg.Auth.EntraAuthority, "Entra ID authority URL for different Azure clouds (Public: login.microsoftonline.com, China: login.chinacloudapi.cn, Government: login.microsoftonline.us)")
	fs.Int("auth-jwks-cache-timeout", cfg.Auth.JWKSCacheTimeout, "JWKS cache timeout in seconds")
	fs.Bool("auth-require-for-http", cfg.Auth.RequireAuthForHTTP, "Require authentication for HTTP transports")

	// Logging and telemetry
	fs.BoolP("verbose", "v", cfg.Verbose, "Enable verbose logging")
	fs.String("otlp-endpoint", cfg.OTLPEndpoint, "OTLP endpoint for OpenTelemetry traces (e.g. localhost:4317)")
	fs.String("app-insights-key", cfg.AppInsightsKey, "Application Insights instrumentation key or connection string")

	fs.BoolP("help", "h", false, "Show help message")
	fs.Bool("version", false, "Show version information and exit")

	return fs
}

// ParseArgs parses args, layering AZURE_MCP_* environment variables under
// explicitly passed flags.
func (cfg *ConfigData) ParseArgs(args []string) error {
	fs := cfg.newFlagSet("azure-mcp")
	fs.Usage = func() {}
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse flags")
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return errors.Wrap(err, "failed to bind flags")
	}

	cfg.Transport = v.GetString("transport")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.Timeout = v.GetInt("timeout")
	cfg.AccessLevel = strings.ToLower(v.GetString("access-level"))
	cfg.EnabledComponents = splitList(v.GetString("enabled-components"))
	cfg.ErrorMode = strings.ToLower(v.GetString("error-mode"))
	cfg.HideStackTraces = v.GetBool("hide-stack-traces")

	cfg.Auth.Enabled = v.GetBool("auth-enabled")
	cfg.Auth.EntraClientID = v.GetString("auth-client-id")
	cfg.Auth.EntraTenantID = v.GetString("auth-tenant-id")
	cfg.Auth.EntraAuthority = v.GetString("auth-authority")
	cfg.Auth.JWKSCacheTimeout = v.GetInt("auth-jwks-cache-timeout")
	cfg.Auth.RequireAuthForHTTP = v.GetBool("auth-require-for-http")

	cfg.Verbose = v.GetBool("verbose")
	cfg.OTLPEndpoint = v.GetString("otlp-endpoint")
	cfg.AppInsightsKey = v.GetString("app-insights-key")
	if cfg.AppInsightsKey == "" {
		cfg.AppInsightsKey = os.Getenv("APPLICATIONINSIGHTS_CONNECTION_STRING")
	}

	cfg.ShowHelp, _ = fs.GetBool("help")
	cfg.ShowVersion, _ = fs.GetBool("version")
	return nil
}

// ParseFlags parses command line arguments and updates the configuration
func (cfg *ConfigData) ParseFlags() {
	if err := cfg.ParseArgs(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\nUsage of %s:\n", err, os.Args[0])
		cfg.printDefaults()
		os.Exit(1)
	}

	if cfg.ShowHelp {
		fmt.Printf("Usage of %s:\n", os.Args[0])
		cfg.printDefaults()
		os.Exit(0)
	}

	if cfg.ShowVersion {
		cfg.PrintVersion()
		os.Exit(0)
	}
}

func (cfg *ConfigData) printDefaults() {
	fs := NewConfig().newFlagSet(os.Args[0])
	fs.SetOutput(os.Stdout)
	fs.PrintDefaults()
}

// IsReadOnly reports whether mutating tools must stay unavailable
func (cfg *ConfigData) IsReadOnly() bool {
	return cfg.AccessLevel == AccessLevelReadOnly
}

// InitializeTelemetry initializes the telemetry service
func (cfg *ConfigData) InitializeTelemetry(ctx context.Context, serviceName, serviceVersion string) {
	telemetryConfig := telemetry.NewConfig(serviceName, serviceVersion)

	if cfg.OTLPEndpoint != "" {
		telemetryConfig.SetOTLPEndpoint(cfg.OTLPEndpoint)
	}
	if cfg.AppInsightsKey != "" {
		telemetryConfig.SetAppInsightsKey(cfg.AppInsightsKey)
	}

	cfg.TelemetryService = telemetry.NewService(telemetryConfig)
	if err := cfg.TelemetryService.Initialize(ctx); err != nil {
		// Continue without telemetry - this is not a fatal error
		logger.Warnf("Failed to initialize telemetry: %v", err)
	}

	cfg.TelemetryService.TrackServiceStartup(ctx)
}

// PrintVersion prints version information
func (cfg *ConfigData) PrintVersion() {
	versionInfo := version.GetVersionInfo()
	fmt.Printf("azure-mcp version %s\n", versionInfo["version"])
	fmt.Printf("Git commit: %s\n", versionInfo["gitCommit"])
	fmt.Printf("Git tree state: %s\n", versionInfo["gitTreeState"])
	fmt.Printf("Go version: %s\n", versionInfo["goVersion"])
	fmt.Printf("Platform: %s\n", versionInfo["platform"])
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

package config

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Transports
const (
	TransportStdio          = "stdio"
	TransportSSE            = "sse"
	TransportStreamableHTTP = "streamable-http"
)

// AuthConfig holds authentication configuration for the HTTP transports
type AuthConfig struct {
	Enabled bool `json:"enabled"`

	// Microsoft Entra ID configuration
	EntraClientID  string `json:"entra_client_id"`
	EntraTenantID  string `json:"entra_tenant_id"`
	EntraAuthority string `json:"entra_authority"`

	JWKSCacheTimeout int `json:"jwks_cache_timeout"` // seconds

	// Transport policy - whether HTTP transports require a bearer token
	RequireAuthForHTTP bool `json:"require_auth_for_http"`
}

// NewAuthConfig creates a new AuthConfig with default values
func NewAuthConfig() *AuthConfig {
	return &AuthConfig{
		Enabled:            false,
		EntraAuthority:     "https://login.microsoftonline.com",
		JWKSCacheTimeout:   3600,
		RequireAuthForHTTP: true,
	}
}

// ShouldAuthenticate determines if authentication applies to the given transport.
// stdio is a local pipe and never authenticates.
func (c *AuthConfig) ShouldAuthenticate(transport string) bool {
	if c == nil || !c.Enabled {
		return false
	}
	if transport == TransportStdio {
		return false
	}
	return c.RequireAuthForHTTP
}

// ValidateConfig validates the authentication configuration
func (c *AuthConfig) ValidateConfig() error {
	if !c.Enabled {
		return nil
	}
	if c.EntraClientID == "" {
		return errors.New("auth: entra_client_id is required when authentication is enabled")
	}
	if c.EntraTenantID == "" {
		return errors.New("auth: entra_tenant_id is required when authentication is enabled")
	}
	if c.JWKSCacheTimeout <= 0 {
		return errors.New("auth: jwks_cache_timeout must be positive")
	}
	if !strings.HasPrefix(c.EntraAuthority, "https://") {
		return errors.Newf("auth: entra_authority must be an https URL, got %q", c.EntraAuthority)
	}
	return nil
}

// GetIssuer returns the v2.0 issuer URL for the tenant
func (c *AuthConfig) GetIssuer() string {
	authority := strings.TrimSuffix(c.EntraAuthority, "/")
	return fmt.Sprintf("%s/%s/v2.0", authority, c.EntraTenantID)
}

// GetJWKSURL returns the JWKS endpoint URL for the tenant
func (c *AuthConfig) GetJWKSURL() string {
	authority := strings.TrimSuffix(c.EntraAuthority, "/")
	return fmt.Sprintf("%s/%s/discovery/v2.0/keys", authority, c.EntraTenantID)
}

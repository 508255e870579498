package config

import (
	"strings"
	"testing"
)

func validAuthConfig() *AuthConfig {
	return &AuthConfig{
		Enabled:            true,
		EntraClientID:      "client-12345",
		EntraTenantID:      "tenant-67890",
		EntraAuthority:     "https://login.microsoftonline.us",
		JWKSCacheTimeout:   7200,
		RequireAuthForHTTP: true,
	}
}

func TestNewAuthConfig(t *testing.T) {
	config := NewAuthConfig()

	if config.Enabled {
		t.Error("Expected Enabled to be false by default")
	}
	if config.EntraAuthority != "https://login.microsoftonline.com" {
		t.Errorf("Expected EntraAuthority to be 'https://login.microsoftonline.com', got '%s'", config.EntraAuthority)
	}
	if config.JWKSCacheTimeout != 3600 {
		t.Errorf("Expected JWKSCacheTimeout to be 3600, got %d", config.JWKSCacheTimeout)
	}
	if !config.RequireAuthForHTTP {
		t.Error("Expected RequireAuthForHTTP to be true by default")
	}
	if config.EntraClientID != "" || config.EntraTenantID != "" {
		t.Errorf("Expected empty Entra IDs by default, got '%s' / '%s'", config.EntraClientID, config.EntraTenantID)
	}
	if err := config.ValidateConfig(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestAuthConfig_ShouldAuthenticate(t *testing.T) {
	tests := []struct {
		name               string
		enabled            bool
		requireAuthForHTTP bool
		transport          string
		expected           bool
	}{
		{"disabled - stdio", false, true, TransportStdio, false},
		{"disabled - streamable-http", false, true, TransportStreamableHTTP, false},
		{"enabled - stdio", true, true, TransportStdio, false},
		{"enabled - streamable-http", true, true, TransportStreamableHTTP, true},
		{"enabled - streamable-http not required", true, false, TransportStreamableHTTP, false},
		{"enabled - sse", true, true, TransportSSE, true},
		{"enabled - sse not required", true, false, TransportSSE, false},
		{"enabled - unknown transport", true, true, "custom-transport", true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := &AuthConfig{Enabled: test.enabled, RequireAuthForHTTP: test.requireAuthForHTTP}
			if result := config.ShouldAuthenticate(test.transport); result != test.expected {
				t.Errorf("ShouldAuthenticate(%s) = %v, expected %v", test.transport, result, test.expected)
			}
		})
	}

	var nilConfig *AuthConfig
	if nilConfig.ShouldAuthenticate(TransportStreamableHTTP) {
		t.Error("nil config should never authenticate")
	}
}

func TestAuthConfig_ValidateConfig(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*AuthConfig)
		errorMsg string
	}{
		{"complete config", func(*AuthConfig) {}, ""},
		{"disabled ignores missing fields", func(c *AuthConfig) { *c = AuthConfig{} }, ""},
		{"missing client ID", func(c *AuthConfig) { c.EntraClientID = "" }, "entra_client_id is required"},
		{"missing tenant ID", func(c *AuthConfig) { c.EntraTenantID = "" }, "entra_tenant_id is required"},
		{"zero cache timeout", func(c *AuthConfig) { c.JWKSCacheTimeout = 0 }, "jwks_cache_timeout must be positive"},
		{"negative cache timeout", func(c *AuthConfig) { c.JWKSCacheTimeout = -100 }, "jwks_cache_timeout must be positive"},
		{"http authority", func(c *AuthConfig) { c.EntraAuthority = "http://login.microsoftonline.com" }, "entra_authority must be an https URL"},
		{"untrimmed authority", func(c *AuthConfig) { c.EntraAuthority = "  https://login.microsoftonline.com" }, "entra_authority must be an https URL"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := validAuthConfig()
			test.mutate(config)

			err := config.ValidateConfig()
			if test.errorMsg == "" {
				if err != nil {
					t.Errorf("Expected no error but got: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), test.errorMsg) {
				t.Errorf("Expected error containing '%s', got %v", test.errorMsg, err)
			}
		})
	}
}

func TestAuthConfig_URLs(t *testing.T) {
	tests := []struct {
		name      string
		authority string
		tenantID  string
		issuer    string
		jwks      string
	}{
		{
			"public cloud",
			"https://login.microsoftonline.com", "12345678-1234-1234-1234-123456789012",
			"https://login.microsoftonline.com/12345678-1234-1234-1234-123456789012/v2.0",
			"https://login.microsoftonline.com/12345678-1234-1234-1234-123456789012/discovery/v2.0/keys",
		},
		{
			"trailing slash",
			"https://login.microsoftonline.com/", "test-tenant-id",
			"https://login.microsoftonline.com/test-tenant-id/v2.0",
			"https://login.microsoftonline.com/test-tenant-id/discovery/v2.0/keys",
		},
		{
			"government cloud",
			"https://login.microsoftonline.us", "tenant-67890",
			"https://login.microsoftonline.us/tenant-67890/v2.0",
			"https://login.microsoftonline.us/tenant-67890/discovery/v2.0/keys",
		},
		{
			// only one trailing slash is trimmed
			"multiple trailing slashes",
			"https://login.chinacloudapi.cn///", "tenant-id",
			"https://login.chinacloudapi.cn///tenant-id/v2.0",
			"https://login.chinacloudapi.cn///tenant-id/discovery/v2.0/keys",
		},
		{"empty", "", "", "//v2.0", "//discovery/v2.0/keys"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := &AuthConfig{EntraAuthority: test.authority, EntraTenantID: test.tenantID}

			if issuer := config.GetIssuer(); issuer != test.issuer {
				t.Errorf("Expected issuer '%s', got '%s'", test.issuer, issuer)
			}
			if jwksURL := config.GetJWKSURL(); jwksURL != test.jwks {
				t.Errorf("Expected JWKS URL '%s', got '%s'", test.jwks, jwksURL)
			}
		})
	}
}

package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-mcp/internal/config"
	"github.com/Azure/azure-mcp/internal/logger"
)

// ProtectedResourcePath is where MCP clients discover the authorization server
const ProtectedResourcePath = "/.well-known/oauth-protected-resource"

// ProtectedResourceMetadata is the OAuth 2.0 protected resource metadata document (RFC 9728)
type ProtectedResourceMetadata struct {
	Resource               string   `json:"resource"`
	AuthorizationServers   []string `json:"authorization_servers"`
	ScopesSupported        []string `json:"scopes_supported"`
	BearerMethodsSupported []string `json:"bearer_methods_supported"`
}

// NewProtectedResourceMetadata describes the /mcp endpoint served from the request host
func NewProtectedResourceMetadata(cfg *config.AuthConfig, r *http.Request) ProtectedResourceMetadata {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	authority := strings.TrimSuffix(cfg.EntraAuthority, "/")

	return ProtectedResourceMetadata{
		Resource:               fmt.Sprintf("%s://%s/mcp", scheme, r.Host),
		AuthorizationServers:   []string{fmt.Sprintf("%s/%s/v2.0", authority, cfg.EntraTenantID)},
		ScopesSupported:        []string{fmt.Sprintf("api://%s/.default", cfg.EntraClientID)},
		BearerMethodsSupported: []string{"header"},
	}
}

// ProtectedResourceMetadataHandler serves the metadata document for cfg
func ProtectedResourceMetadataHandler(cfg *config.AuthConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(NewProtectedResourceMetadata(cfg, r)); err != nil {
			logger.Errorf("Failed to encode protected resource metadata: %v", err)
		}
	}
}

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/Azure/azure-mcp/internal/config"
	"github.com/Azure/azure-mcp/internal/logger"
)

// TokenValidator validates a bearer token and returns the caller
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*UserContext, error)
}

// HTTPAuthMiddleware requires an Entra ID bearer token on every request
type HTTPAuthMiddleware struct {
	authConfig *config.AuthConfig
	validator  TokenValidator
}

// NewHTTPAuthMiddleware creates the middleware. The JWKS cache is only
// registered when authentication is enabled.
func NewHTTPAuthMiddleware(authConfig *config.AuthConfig) (*HTTPAuthMiddleware, error) {
	m := &HTTPAuthMiddleware{authConfig: authConfig}
	if authConfig == nil || !authConfig.Enabled {
		return m, nil
	}

	validator, err := NewEntraValidator(authConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize authentication validator")
	}
	m.validator = validator
	return m, nil
}

// Middleware wraps next with bearer token validation
func (m *HTTPAuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.authConfig.ShouldAuthenticate(config.TransportStreamableHTTP) {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.sendUnauthorizedResponse(w, "Missing Authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			m.sendUnauthorizedResponse(w, "Invalid Authorization header format. Expected 'Bearer <token>'")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			m.sendUnauthorizedResponse(w, "Empty token")
			return
		}

		user, err := m.validator.ValidateToken(r.Context(), token)
		if err != nil {
			logger.Debugf("Rejected bearer token from %s: %v", r.RemoteAddr, err)
			m.sendUnauthorizedResponse(w, "Invalid token: "+err.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), user)))
	})
}

// sendUnauthorizedResponse writes a JSON-RPC error with HTTP 401
func (m *HTTPAuthMiddleware) sendUnauthorizedResponse(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    -32600,
			"message": "Authentication required",
			"data":    message,
		},
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Errorf("Failed to encode unauthorized response: %v", err)
	}
}

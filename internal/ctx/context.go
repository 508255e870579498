// Package ctx holds the request-scoped values shared between transports and tool handlers.
package ctx

import "context"

type ContextKey string

// AzureTokenKey carries a caller-supplied ARM/data-plane bearer token.
// This is the name of the HTTP header, not a hardcoded credential.
// #nosec G101
const AzureTokenKey ContextKey = "X-Azure-Token"

// AccessTokenEnv is read by the stdio transport in place of the header.
// #nosec G101
const AccessTokenEnv = "AZURE_MCP_ACCESS_TOKEN"

// WithAzureToken stores token in c. Empty tokens are ignored.
func WithAzureToken(c context.Context, token string) context.Context {
	if token == "" {
		return c
	}
	return context.WithValue(c, AzureTokenKey, token)
}

// AzureTokenFrom returns the token stored by WithAzureToken, if any.
func AzureTokenFrom(c context.Context) (string, bool) {
	token, ok := c.Value(AzureTokenKey).(string)
	return token, ok && token != ""
}

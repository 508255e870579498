// Package azureclient resolves credentials and client options for the Azure SDK.
// Nothing here is cached: every tool call builds its own credential and client.
package azureclient

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/cockroachdb/errors"

	mcpctx "github.com/Azure/azure-mcp/internal/ctx"
	"github.com/Azure/azure-mcp/internal/logger"
	"github.com/Azure/azure-mcp/internal/version"
)

const applicationID = "azure-mcp"

// CredentialProvider supplies a credential for one tool call
type CredentialProvider interface {
	GetCredential(ctx context.Context) (azcore.TokenCredential, error)
}

// CredentialProviderFunc adapts a function to CredentialProvider
type CredentialProviderFunc func(ctx context.Context) (azcore.TokenCredential, error)

var _ CredentialProvider = CredentialProviderFunc(nil)

// GetCredential implements CredentialProvider
func (f CredentialProviderFunc) GetCredential(ctx context.Context) (azcore.TokenCredential, error) {
	return f(ctx)
}

// DefaultCredentialProvider uses a token from the request context when one is
// present and otherwise falls back to DefaultAzureCredential (environment,
// workload identity, managed identity, Azure CLI).
type DefaultCredentialProvider struct {
	options *azidentity.DefaultAzureCredentialOptions
}

// NewDefaultCredentialProvider creates a DefaultCredentialProvider
func NewDefaultCredentialProvider() *DefaultCredentialProvider {
	return &DefaultCredentialProvider{}
}

// GetCredential implements CredentialProvider
func (p *DefaultCredentialProvider) GetCredential(ctx context.Context) (azcore.TokenCredential, error) {
	if token, ok := mcpctx.AzureTokenFrom(ctx); ok {
		logger.Debugf("Using caller supplied Azure token")
		return NewStaticTokenCredential(token), nil
	}

	cred, err := azidentity.NewDefaultAzureCredential(p.options)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create default Azure credential")
	}
	return cred, nil
}

// ARMClientOptions returns options for resource manager clients
func ARMClientOptions() *arm.ClientOptions {
	return &arm.ClientOptions{
		ClientOptions: ClientOptions(),
	}
}

// ClientOptions returns options shared by data-plane clients
func ClientOptions() policy.ClientOptions {
	return policy.ClientOptions{
		Telemetry: policy.TelemetryOptions{
			ApplicationID: applicationID + "/" + version.GetVersion(),
		},
	}
}

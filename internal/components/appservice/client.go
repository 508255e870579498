package appservice

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/cockroachdb/errors"

	"github.com/Azure/azure-mcp/internal/azureclient"
)

// WebAppsClient is the subset of armappservice.WebAppsClient the tools call
type WebAppsClient interface {
	Get(ctx context.Context, resourceGroupName string, name string, options *armappservice.WebAppsClientGetOptions) (armappservice.WebAppsClientGetResponse, error)
	GetConfiguration(ctx context.Context, resourceGroupName string, name string, options *armappservice.WebAppsClientGetConfigurationOptions) (armappservice.WebAppsClientGetConfigurationResponse, error)
	NewListPager(options *armappservice.WebAppsClientListOptions) *runtime.Pager[armappservice.WebAppsClientListResponse]
	Restart(ctx context.Context, resourceGroupName string, name string, options *armappservice.WebAppsClientRestartOptions) (armappservice.WebAppsClientRestartResponse, error)
	Start(ctx context.Context, resourceGroupName string, name string, options *armappservice.WebAppsClientStartOptions) (armappservice.WebAppsClientStartResponse, error)
	Stop(ctx context.Context, resourceGroupName string, name string, options *armappservice.WebAppsClientStopOptions) (armappservice.WebAppsClientStopResponse, error)
}

var _ WebAppsClient = (*armappservice.WebAppsClient)(nil)

// ClientFactory builds a WebAppsClient for one subscription
type ClientFactory func(ctx context.Context, subscriptionID string) (WebAppsClient, error)

// NewClientFactory returns a factory that creates a new client on every call
func NewClientFactory(creds azureclient.CredentialProvider) ClientFactory {
	return func(ctx context.Context, subscriptionID string) (WebAppsClient, error) {
		cred, err := creds.GetCredential(ctx)
		if err != nil {
			return nil, err
		}
		client, err := armappservice.NewWebAppsClient(subscriptionID, cred, azureclient.ARMClientOptions())
		if err != nil {
			return nil, errors.Wrap(err, "failed to create App Service client")
		}
		return client, nil
	}
}

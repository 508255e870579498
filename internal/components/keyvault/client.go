package keyvault

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/keyvault/armkeyvault"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/cockroachdb/errors"

	"github.com/Azure/azure-mcp/internal/azureclient"
)

// SecretsClient is the subset of azsecrets.Client the secret tools call
type SecretsClient interface {
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
	SetSecret(ctx context.Context, name string, parameters azsecrets.SetSecretParameters, options *azsecrets.SetSecretOptions) (azsecrets.SetSecretResponse, error)
	DeleteSecret(ctx context.Context, name string, options *azsecrets.DeleteSecretOptions) (azsecrets.DeleteSecretResponse, error)
	NewListSecretPropertiesPager(options *azsecrets.ListSecretPropertiesOptions) *runtime.Pager[azsecrets.ListSecretPropertiesResponse]
}

var _ SecretsClient = (*azsecrets.Client)(nil)

// VaultsClient is the subset of armkeyvault.VaultsClient used by azure_keyvault_list
type VaultsClient interface {
	NewListPager(options *armkeyvault.VaultsClientListOptions) *runtime.Pager[armkeyvault.VaultsClientListResponse]
}

var _ VaultsClient = (*armkeyvault.VaultsClient)(nil)

// SecretsClientFactory builds a data-plane client for one vault URL
type SecretsClientFactory func(ctx context.Context, vaultURL string) (SecretsClient, error)

// VaultsClientFactory builds a management client for one subscription
type VaultsClientFactory func(ctx context.Context, subscriptionID string) (VaultsClient, error)

// NewSecretsClientFactory returns a factory creating a new azsecrets client per call
func NewSecretsClientFactory(creds azureclient.CredentialProvider) SecretsClientFactory {
	return func(ctx context.Context, vaultURL string) (SecretsClient, error) {
		cred, err := creds.GetCredential(ctx)
		if err != nil {
			return nil, err
		}
		client, err := azsecrets.NewClient(vaultURL, cred, &azsecrets.ClientOptions{
			ClientOptions: azureclient.ClientOptions(),
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create Key Vault secrets client")
		}
		return client, nil
	}
}

// NewVaultsClientFactory returns a factory creating a new armkeyvault client per call
func NewVaultsClientFactory(creds azureclient.CredentialProvider) VaultsClientFactory {
	return func(ctx context.Context, subscriptionID string) (VaultsClient, error) {
		cred, err := creds.GetCredential(ctx)
		if err != nil {
			return nil, err
		}
		client, err := armkeyvault.NewVaultsClient(subscriptionID, cred, azureclient.ARMClientOptions())
		if err != nil {
			return nil, errors.Wrap(err, "failed to create Key Vault management client")
		}
		return client, nil
	}
}

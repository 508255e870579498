// Package keyvault implements the Key Vault secret and vault listing tools.
//
// Every failure, validation included, is reported inside the result as an
// error field; the handlers never return an error to the tool adapter.
package keyvault

import (
	"context"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"

	"github.com/Azure/azure-mcp/internal/components/common"
	"github.com/Azure/azure-mcp/internal/config"
	"github.com/Azure/azure-mcp/internal/logger"
)

const (
	msgInvalidVaultURL      = "Invalid Key Vault URL format. Should be: https://<vault-name>.vault.azure.net"
	msgSecretNameRequired   = "Secret name is required for this operation."
	msgSecretValueRequired  = "Secret value is required for this operation."
	msgSubscriptionRequired = "Subscription ID is required for this operation."

	vaultDomain = ".vault.azure.net"
)

// Error prefixes, one per tool
const (
	prefixGet    = "Error retrieving secret: "
	prefixSet    = "Error setting secret: "
	prefixDelete = "Error deleting secret: "
	prefixList   = "Error listing secrets: "
	prefixVaults = "Error listing Key Vaults: "
)

// ErrorResult is returned by every Key Vault tool that fails
type ErrorResult struct {
	Error string `json:"error"`
}

// Secret is the result of azure_keyvault_get_secret
type Secret struct {
	Name        string  `json:"name"`
	Value       *string `json:"value,omitempty"`
	ContentType *string `json:"contentType,omitempty"`
	Enabled     *bool   `json:"enabled,omitempty"`
}

// Redacted hides the secret value from the debug log
func (s Secret) Redacted() interface{} {
	if s.Value != nil {
		s.Value = to.Ptr("[REDACTED]")
	}
	return s
}

// SecretProperties describes a secret without its value
type SecretProperties struct {
	Name    string     `json:"name"`
	Enabled *bool      `json:"enabled,omitempty"`
	Created *time.Time `json:"created,omitempty"`
	Updated *time.Time `json:"updated,omitempty"`
}

// DeletedSecret is the result of azure_keyvault_delete_secret
type DeletedSecret struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// SecretList is the result of azure_keyvault_list_secrets
type SecretList struct {
	Error   string             `json:"error,omitempty"`
	Secrets []SecretProperties `json:"secrets"`
}

// Vault is one entry of azure_keyvault_list
type Vault struct {
	ID       *string            `json:"id,omitempty"`
	Name     *string            `json:"name,omitempty"`
	Location *string            `json:"location,omitempty"`
	Tags     map[string]*string `json:"tags,omitempty"`
}

// VaultList is the result of azure_keyvault_list
type VaultList struct {
	Error  string  `json:"error,omitempty"`
	Vaults []Vault `json:"vaults"`
}

// Handlers implements the Key Vault tools
type Handlers struct {
	newSecretsClient SecretsClientFactory
	newVaultsClient  VaultsClientFactory
}

// NewHandlers creates the Key Vault handlers
func NewHandlers(secrets SecretsClientFactory, vaults VaultsClientFactory) *Handlers {
	return &Handlers{newSecretsClient: secrets, newVaultsClient: vaults}
}

// validateVaultURL accepts https URLs that mention the Key Vault domain
func validateVaultURL(params map[string]interface{}) (string, error) {
	vaultURL := common.GetString(params, "vaultUrl")
	if !strings.HasPrefix(vaultURL, "https://") || !strings.Contains(vaultURL, vaultDomain) {
		return "", common.NewValidationError("vaultUrl", msgInvalidVaultURL)
	}
	return vaultURL, nil
}

// secretRef validates the vault URL and secret name without touching the vault
func secretRef(params map[string]interface{}) (string, string, error) {
	vaultURL, err := validateVaultURL(params)
	if err != nil {
		return "", "", err
	}
	name, err := common.RequireString(params, "secretName", msgSecretNameRequired)
	if err != nil {
		return "", "", err
	}
	return vaultURL, name, nil
}

func (h *Handlers) secretTarget(ctx context.Context, params map[string]interface{}) (SecretsClient, string, error) {
	vaultURL, name, err := secretRef(params)
	if err != nil {
		return nil, "", err
	}
	client, err := h.newSecretsClient(ctx, vaultURL)
	if err != nil {
		return nil, "", err
	}
	return client, name, nil
}

func failure(prefix string, err error) ErrorResult {
	logger.Debugf("Key Vault call failed: %v", err)
	return ErrorResult{Error: prefix + common.ErrorMessage(err)}
}

// secretName prefers the name carried by the service response
func secretName(id *azsecrets.ID, fallback string) string {
	if id != nil {
		if name := id.Name(); name != "" {
			return name
		}
	}
	return fallback
}

// GetSecret handles azure_keyvault_get_secret
func (h *Handlers) GetSecret(ctx context.Context, params map[string]interface{}, _ *config.ConfigData) (interface{}, error) {
	client, name, err := h.secretTarget(ctx, params)
	if err != nil {
		return failure(prefixGet, err), nil
	}

	resp, err := client.GetSecret(ctx, name, "", nil)
	if err != nil {
		return failure(prefixGet, err), nil
	}

	secret := Secret{
		Name:        secretName(resp.ID, name),
		Value:       resp.Value,
		ContentType: resp.ContentType,
	}
	if resp.Attributes != nil {
		secret.Enabled = resp.Attributes.Enabled
	}
	return secret, nil
}

// SetSecret handles azure_keyvault_set_secret. An explicit empty value is
// stored as is; a missing or non-string value is rejected before the vault is
// contacted.
func (h *Handlers) SetSecret(ctx context.Context, params map[string]interface{}, _ *config.ConfigData) (interface{}, error) {
	vaultURL, name, err := secretRef(params)
	if err != nil {
		return failure(prefixSet, err), nil
	}
	value, ok := params["secretValue"].(string)
	if !ok {
		return failure(prefixSet, common.NewValidationError("secretValue", msgSecretValueRequired)), nil
	}

	client, err := h.newSecretsClient(ctx, vaultURL)
	if err != nil {
		return failure(prefixSet, err), nil
	}
	resp, err := client.SetSecret(ctx, name, azsecrets.SetSecretParameters{Value: &value}, nil)
	if err != nil {
		return failure(prefixSet, err), nil
	}

	return secretProperties(secretName(resp.ID, name), resp.Attributes), nil
}

// DeleteSecret handles azure_keyvault_delete_secret
func (h *Handlers) DeleteSecret(ctx context.Context, params map[string]interface{}, _ *config.ConfigData) (interface{}, error) {
	client, name, err := h.secretTarget(ctx, params)
	if err != nil {
		return failure(prefixDelete, err), nil
	}

	if _, err := client.DeleteSecret(ctx, name, nil); err != nil {
		return failure(prefixDelete, err), nil
	}
	return DeletedSecret{Name: name, Status: "deleted"}, nil
}

// ListSecrets handles azure_keyvault_list_secrets
func (h *Handlers) ListSecrets(ctx context.Context, params map[string]interface{}, _ *config.ConfigData) (interface{}, error) {
	fail := func(err error) (interface{}, error) {
		return SecretList{Error: failure(prefixList, err).Error, Secrets: []SecretProperties{}}, nil
	}

	vaultURL, err := validateVaultURL(params)
	if err != nil {
		return fail(err)
	}
	client, err := h.newSecretsClient(ctx, vaultURL)
	if err != nil {
		return fail(err)
	}

	secrets := make([]SecretProperties, 0)
	pager := client.NewListSecretPropertiesPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return fail(err)
		}
		for _, props := range page.Value {
			if props == nil {
				continue
			}
			secrets = append(secrets, secretProperties(secretName(props.ID, ""), props.Attributes))
		}
	}
	return SecretList{Secrets: secrets}, nil
}

func secretProperties(name string, attrs *azsecrets.SecretAttributes) SecretProperties {
	props := SecretProperties{Name: name}
	if attrs != nil {
		props.Enabled = attrs.Enabled
		props.Created = attrs.Created
		props.Updated = attrs.Updated
	}
	return props
}

// ListVaults handles azure_keyvault_list
func (h *Handlers) ListVaults(ctx context.Context, params map[string]interface{}, _ *config.ConfigData) (interface{}, error) {
	fail := func(err error) (interface{}, error) {
		return VaultList{Error: failure(prefixVaults, err).Error, Vaults: []Vault{}}, nil
	}

	subscriptionID, err := common.RequireString(params, "subscriptionId", msgSubscriptionRequired)
	if err != nil {
		return fail(err)
	}
	client, err := h.newVaultsClient(ctx, subscriptionID)
	if err != nil {
		return fail(err)
	}

	vaults := make([]Vault, 0)
	pager := client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return fail(err)
		}
		for _, res := range page.Value {
			if res == nil {
				continue
			}
			vaults = append(vaults, Vault{
				ID:       res.ID,
				Name:     res.Name,
				Location: res.Location,
				Tags:     res.Tags,
			})
		}
	}

	logger.Debugf("Listed %d Key Vaults in subscription %s", len(vaults), subscriptionID)
	return VaultList{Vaults: vaults}, nil
}

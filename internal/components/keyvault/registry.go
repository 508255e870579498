package keyvault

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Azure/azure-mcp/internal/config"
	"github.com/Azure/azure-mcp/internal/registry"
	"github.com/Azure/azure-mcp/internal/tools"
)

func vaultURLParam() mcp.ToolOption {
	return mcp.WithString("vaultUrl",
		mcp.Description("Azure Key Vault URL (https://<vault-name>.vault.azure.net)"),
		mcp.Required(),
	)
}

func secretNameParam(description string) mcp.ToolOption {
	return mcp.WithString("secretName",
		mcp.Description(description),
		mcp.Required(),
	)
}

// RegisterGetSecretTool defines azure_keyvault_get_secret
func RegisterGetSecretTool() mcp.Tool {
	return mcp.NewTool("azure_keyvault_get_secret",
		mcp.WithDescription("Get a secret from Azure Key Vault"),
		mcp.WithTitleAnnotation("Get Key Vault Secret"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		vaultURLParam(),
		secretNameParam("Name of the secret to retrieve"),
	)
}

// RegisterSetSecretTool defines azure_keyvault_set_secret
func RegisterSetSecretTool() mcp.Tool {
	return mcp.NewTool("azure_keyvault_set_secret",
		mcp.WithDescription("Create or update a secret in Azure Key Vault"),
		mcp.WithTitleAnnotation("Set Key Vault Secret"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		vaultURLParam(),
		secretNameParam("Name of the secret to set"),
		mcp.WithString("secretValue",
			mcp.Description("Value of the secret"),
			mcp.Required(),
		),
	)
}

// RegisterDeleteSecretTool defines azure_keyvault_delete_secret
func RegisterDeleteSecretTool() mcp.Tool {
	return mcp.NewTool("azure_keyvault_delete_secret",
		mcp.WithDescription("Delete a secret from Azure Key Vault"),
		mcp.WithTitleAnnotation("Delete Key Vault Secret"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		vaultURLParam(),
		secretNameParam("Name of the secret to delete"),
	)
}

// RegisterListSecretsTool defines azure_keyvault_list_secrets
func RegisterListSecretsTool() mcp.Tool {
	return mcp.NewTool("azure_keyvault_list_secrets",
		mcp.WithDescription("List all secrets in an Azure Key Vault"),
		mcp.WithTitleAnnotation("List Key Vault Secrets"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		vaultURLParam(),
	)
}

// RegisterListVaultsTool defines azure_keyvault_list
func RegisterListVaultsTool() mcp.Tool {
	return mcp.NewTool("azure_keyvault_list",
		mcp.WithDescription("List all Azure Key Vaults in a subscription"),
		mcp.WithTitleAnnotation("List Key Vaults"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("subscriptionId",
			mcp.Description("Azure Subscription ID"),
			mcp.Required(),
		),
	)
}

// RegisterTools adds the Key Vault tools to reg
func RegisterTools(reg *registry.ToolRegistry, h *Handlers, cfg *config.ConfigData) {
	add := func(tool mcp.Tool, fn tools.ResourceHandlerFunc, readOnly bool) {
		reg.RegisterTool(tool, tools.CreateResourceHandler(fn, cfg), registry.CategoryKeyVault, readOnly)
	}

	add(RegisterGetSecretTool(), h.GetSecret, true)
	add(RegisterSetSecretTool(), h.SetSecret, false)
	add(RegisterDeleteSecretTool(), h.DeleteSecret, false)
	add(RegisterListSecretsTool(), h.ListSecrets, true)
	add(RegisterListVaultsTool(), h.ListVaults, true)
}

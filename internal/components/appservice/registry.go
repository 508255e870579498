package appservice

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Azure/azure-mcp/internal/config"
	"github.com/Azure/azure-mcp/internal/registry"
	"github.com/Azure/azure-mcp/internal/tools"
)

func subscriptionParam() mcp.ToolOption {
	return mcp.WithString("subscriptionId",
		mcp.Description("Azure Subscription ID"),
		mcp.Required(),
	)
}

func appParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		subscriptionParam(),
		mcp.WithString("resourceGroupName",
			mcp.Description("Resource group containing the App Service"),
			mcp.Required(),
		),
		mcp.WithString("appName",
			mcp.Description("Name of the App Service"),
			mcp.Required(),
		),
	}
}

func newAppTool(name, description, title string, readOnly bool, extra ...mcp.ToolOption) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithTitleAnnotation(title),
		mcp.WithReadOnlyHintAnnotation(readOnly),
		mcp.WithOpenWorldHintAnnotation(true),
	}
	opts = append(opts, extra...)
	opts = append(opts, appParams()...)
	return mcp.NewTool(name, opts...)
}

// RegisterGetAppTool defines azure_apps_get
func RegisterGetAppTool() mcp.Tool {
	return newAppTool("azure_apps_get",
		"Get details of an Azure App Service (state, host names, kind, location, site configuration)",
		"Get App Service", true)
}

// RegisterGetAppConfigTool defines azure_apps_get_config
func RegisterGetAppConfigTool() mcp.Tool {
	return newAppTool("azure_apps_get_config",
		"Get the site configuration of an Azure App Service (runtime versions, app settings, TLS, logging and worker settings)",
		"Get App Service Configuration", true)
}

// RegisterListAppsTool defines azure_apps_list
func RegisterListAppsTool() mcp.Tool {
	return mcp.NewTool("azure_apps_list",
		mcp.WithDescription("List all Azure App Services in a subscription"),
		mcp.WithTitleAnnotation("List App Services"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		subscriptionParam(),
	)
}

// RegisterRestartAppTool defines azure_apps_restart
func RegisterRestartAppTool() mcp.Tool {
	return newAppTool("azure_apps_restart", "Restart an Azure App Service", "Restart App Service", false,
		mcp.WithDestructiveHintAnnotation(false),
	)
}

// RegisterStartAppTool defines azure_apps_start
func RegisterStartAppTool() mcp.Tool {
	return newAppTool("azure_apps_start", "Start an Azure App Service", "Start App Service", false,
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

// RegisterStopAppTool defines azure_apps_stop
func RegisterStopAppTool() mcp.Tool {
	return newAppTool("azure_apps_stop", "Stop an Azure App Service", "Stop App Service", false,
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

// RegisterTools adds the App Service tools to reg
func RegisterTools(reg *registry.ToolRegistry, h *Handlers, cfg *config.ConfigData) {
	add := func(tool mcp.Tool, fn tools.ResourceHandlerFunc, readOnly bool) {
		reg.RegisterTool(tool, tools.CreateResourceHandler(fn, cfg), registry.CategoryAppService, readOnly)
	}

	add(RegisterGetAppTool(), h.GetApp, true)
	add(RegisterGetAppConfigTool(), h.GetAppConfig, true)
	add(RegisterListAppsTool(), h.ListApps, true)
	add(RegisterRestartAppTool(), h.RestartApp, false)
	add(RegisterStartAppTool(), h.StartApp, false)
	add(RegisterStopAppTool(), h.StopApp, false)
}

package compute

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Azure/azure-mcp/internal/config"
	"github.com/Azure/azure-mcp/internal/registry"
	"github.com/Azure/azure-mcp/internal/tools"
)

// Virtual Machine tool registrations

func subscriptionParam() mcp.ToolOption {
	return mcp.WithString("subscriptionId",
		mcp.Description("Azure Subscription ID"),
		mcp.Required(),
	)
}

func newLifecycleTool(name, description, title string, opts ...mcp.ToolOption) mcp.Tool {
	all := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithTitleAnnotation(title),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	}
	all = append(all, opts...)
	all = append(all,
		subscriptionParam(),
		mcp.WithString("resourceGroupName",
			mcp.Description("Azure Resource Group name"),
			mcp.Required(),
		),
		mcp.WithString("vmName",
			mcp.Description("Virtual Machine name"),
			mcp.Required(),
		),
	)
	return mcp.NewTool(name, all...)
}

// RegisterListVMsTool registers the azure_vms_list tool
func RegisterListVMsTool() mcp.Tool {
	return mcp.NewTool(
		"azure_vms_list",
		mcp.WithDescription("List all Azure Virtual Machines"),
		mcp.WithTitleAnnotation("List Virtual Machines"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		subscriptionParam(),
	)
}

// RegisterDeleteVMTool registers the azure_vms_delete tool
func RegisterDeleteVMTool() mcp.Tool {
	return newLifecycleTool("azure_vms_delete",
		"Delete an Azure Virtual Machine and wait for the deletion to finish", "Delete Virtual Machine",
		mcp.WithDestructiveHintAnnotation(true),
	)
}

// RegisterRestartVMTool registers the azure_vms_restart tool
func RegisterRestartVMTool() mcp.Tool {
	return newLifecycleTool("azure_vms_restart", "Restart an Azure Virtual Machine", "Restart Virtual Machine",
		mcp.WithDestructiveHintAnnotation(false),
	)
}

// RegisterStartVMTool registers the azure_vms_start tool
func RegisterStartVMTool() mcp.Tool {
	return newLifecycleTool("azure_vms_start", "Start an Azure Virtual Machine", "Start Virtual Machine",
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

// RegisterStopVMTool registers the azure_vms_stop tool
func RegisterStopVMTool() mcp.Tool {
	return newLifecycleTool("azure_vms_stop", "Stop an Azure Virtual Machine", "Stop Virtual Machine",
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

// RegisterTools adds the Virtual Machine tools to reg
func RegisterTools(reg *registry.ToolRegistry, h *Handlers, cfg *config.ConfigData) {
	add := func(tool mcp.Tool, fn tools.ResourceHandlerFunc, readOnly bool) {
		reg.RegisterTool(tool, tools.CreateResourceHandler(fn, cfg), registry.CategoryCompute, readOnly)
	}

	add(RegisterListVMsTool(), h.ListVMs, true)
	add(RegisterDeleteVMTool(), h.DeleteVM, false)
	add(RegisterRestartVMTool(), h.RestartVM, false)
	add(RegisterStartVMTool(), h.StartVM, false)
	add(RegisterStopVMTool(), h.StopVM, false)
}

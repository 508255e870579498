// Package registry provides the tool registry for the MCP server.
package registry

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolCategory defines a category for tools.
type ToolCategory string

const (
	// CategoryAppService defines App Service tools.
	CategoryAppService ToolCategory = "appservice"
	// CategoryKeyVault defines Key Vault tools.
	CategoryKeyVault ToolCategory = "keyvault"
	// CategoryStorage defines Blob Storage tools.
	CategoryStorage ToolCategory = "storage"
	// CategoryCompute defines Virtual Machine tools.
	CategoryCompute ToolCategory = "compute"
)

// ToolDefinition defines a tool and its handler.
type ToolDefinition struct {
	Tool     mcp.Tool
	Handler  server.ToolHandlerFunc
	Category ToolCategory
	// ReadOnly tools are available at every access level.
	ReadOnly bool
}

// ToolRegistry is an ordered registry of tools.
type ToolRegistry struct {
	tools map[string]ToolDefinition
	order []string
}

// NewToolRegistry creates a new tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]ToolDefinition),
	}
}

// RegisterTool registers a tool with the registry. Registering a name twice
// replaces the earlier definition and keeps its position.
func (r *ToolRegistry) RegisterTool(tool mcp.Tool, handler server.ToolHandlerFunc, category ToolCategory, readOnly bool) {
	if _, exists := r.tools[tool.Name]; !exists {
		r.order = append(r.order, tool.Name)
	}
	r.tools[tool.Name] = ToolDefinition{
		Tool:     tool,
		Handler:  handler,
		Category: category,
		ReadOnly: readOnly,
	}
}

// GetTool returns the definition registered under name.
func (r *ToolRegistry) GetTool(name string) (ToolDefinition, bool) {
	def, ok := r.tools[name]
	return def, ok
}

// GetAllTools returns all registered tools in registration order.
func (r *ToolRegistry) GetAllTools() []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name])
	}
	return defs
}

// GetToolsByCategory returns the tools of one category in registration order.
func (r *ToolRegistry) GetToolsByCategory(category ToolCategory) []ToolDefinition {
	var defs []ToolDefinition
	for _, def := range r.GetAllTools() {
		if def.Category == category {
			defs = append(defs, def)
		}
	}
	return defs
}

// ConfigureMCPServer registers the tools permitted by readOnly with the MCP
// server and returns their names.
func (r *ToolRegistry) ConfigureMCPServer(mcpServer *server.MCPServer, readOnly bool) []string {
	var names []string
	for _, def := range r.GetAllTools() {
		if readOnly && !def.ReadOnly {
			continue
		}
		mcpServer.AddTool(def.Tool, def.Handler)
		names = append(names, def.Tool.Name)
	}
	return names
}

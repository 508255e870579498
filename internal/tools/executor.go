package tools

import (
	"context"

	"github.com/Azure/azure-mcp/internal/config"
)

// ResourceHandler handles one Azure SDK-backed tool.
// A non-nil error is a raised failure; a returned value may still describe a
// failure through its own error field, depending on the tool family.
type ResourceHandler interface {
	Handle(ctx context.Context, params map[string]interface{}, cfg *config.ConfigData) (interface{}, error)
}

// ResourceHandlerFunc is a function type that implements ResourceHandler
// This allows regular functions to be used as ResourceHandlers without having to create a struct
type ResourceHandlerFunc func(ctx context.Context, params map[string]interface{}, cfg *config.ConfigData) (interface{}, error)

var _ ResourceHandler = ResourceHandlerFunc(nil)

// Handle implements the ResourceHandler interface for ResourceHandlerFunc
func (f ResourceHandlerFunc) Handle(ctx context.Context, params map[string]interface{}, cfg *config.ConfigData) (interface{}, error) {
	return f(ctx, params, cfg)
}

// Redactor is implemented by results that carry secrets. The redacted form
// is what gets logged; the caller still receives the original.
type Redactor interface {
	Redacted() interface{}
}

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Azure/azure-mcp/internal/components/common"
	"github.com/Azure/azure-mcp/internal/config"
	"github.com/Azure/azure-mcp/internal/logger"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Arguments whose values never reach the logs
var sensitiveArgs = map[string]bool{
	"secretValue": true,
}

const redactedValue = "[REDACTED]"

// logToolCall logs the start of a tool call
func logToolCall(toolName string, arguments map[string]interface{}) {
	safe := make(map[string]interface{}, len(arguments))
	for k, v := range arguments {
		if sensitiveArgs[k] {
			v = redactedValue
		}
		safe[k] = v
	}

	if jsonBytes, err := json.Marshal(safe); err == nil {
		logger.Debugf("\n>>> [%s] %s", toolName, string(jsonBytes))
	} else {
		logger.Debugf("\n>>> [%s] %v", toolName, safe)
	}
}

// logToolResult logs the result or error of a tool call
func logToolResult(toolName string, result string, err error) {
	if common.IsValidationError(err) {
		logger.Debugf("\n<<< [%s] INVALID ARGUMENTS: %v", toolName, err)
	} else if err != nil {
		logger.Debugf("\n<<< [%s] ERROR: %v", toolName, err)
	} else if len(result) > 500 {
		logger.Debugf("\n<<< [%s] Result: %d bytes (truncated): %.500s...", toolName, len(result), result)
	} else {
		logger.Debugf("\n<<< [%s] Result: %s", toolName, result)
	}
}

// loggableResult renders the value written to the debug log
func loggableResult(result interface{}, encoded string) string {
	r, ok := result.(Redactor)
	if !ok {
		return encoded
	}
	b, err := json.Marshal(r.Redacted())
	if err != nil {
		return redactedValue
	}
	return string(b)
}

// errorResult is what a raised error becomes in tagged error mode
type errorResult struct {
	Error string `json:"error"`
}

// CreateResourceHandler creates an adapter that converts ResourceHandler to the format expected by MCP server
func CreateResourceHandler(handler ResourceHandler, cfg *config.ConfigData) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := req.Params.Arguments.(map[string]interface{})
		if !ok {
			if req.Params.Arguments != nil {
				err := fmt.Errorf("arguments must be a map[string]interface{}, got %T", req.Params.Arguments)
				if cfg.TelemetryService != nil {
					cfg.TelemetryService.TrackToolInvocation(ctx, req.Params.Name, "", false)
				}
				return mcp.NewToolResultError(err.Error()), nil
			}
			args = map[string]interface{}{}
		}

		if cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Timeout)*time.Second)
			defer cancel()
		}

		logToolCall(req.Params.Name, args)

		result, err := invoke(ctx, req.Params.Name, handler, args, cfg)
		if err != nil {
			logToolResult(req.Params.Name, "", err)
			msg := common.ErrorMessage(err)
			if cfg.ErrorMode == config.ErrorModeTagged {
				return encodeResult(req.Params.Name, errorResult{Error: msg})
			}
			return mcp.NewToolResultError(msg), nil
		}

		return encodeResult(req.Params.Name, result)
	}
}

// invoke runs the handler inside a tool span and records the invocation
func invoke(ctx context.Context, toolName string, handler ResourceHandler, args map[string]interface{}, cfg *config.ConfigData) (interface{}, error) {
	if cfg.TelemetryService == nil {
		return handler.Handle(ctx, args, cfg)
	}

	ctx, span := cfg.TelemetryService.StartToolSpan(ctx, toolName)
	result, err := handler.Handle(ctx, args, cfg)
	cfg.TelemetryService.TrackToolInvocation(ctx, toolName, getOperationValue(args), err == nil)
	cfg.TelemetryService.EndToolSpan(span, err)
	return result, err
}

func encodeResult(toolName string, result interface{}) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(result)
	if err != nil {
		logToolResult(toolName, "", err)
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	encoded := string(b)
	logToolResult(toolName, loggableResult(result, encoded), nil)
	return mcp.NewToolResultText(encoded), nil
}

func getOperationValue(args map[string]interface{}) string {
	if op, _ := args["operation"].(string); op != "" {
		return op
	}
	if action, _ := args["action"].(string); action != "" {
		return action
	}
	return ""
}

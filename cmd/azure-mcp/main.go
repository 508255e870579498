package main

import (
	"context"
	"os"

	"github.com/Azure/azure-mcp/internal/config"
	"github.com/Azure/azure-mcp/internal/logger"
	"github.com/Azure/azure-mcp/internal/server"
	"github.com/Azure/azure-mcp/internal/version"
)

func main() {
	defer logger.Sync()

	cfg := config.NewConfig()
	cfg.ParseFlags()

	validator := config.NewValidator(cfg)
	if !validator.Validate() {
		validator.PrintErrors()
		os.Exit(1)
	}

	logger.SetVerbose(cfg.Verbose)
	cfg.InitializeTelemetry(context.Background(), "azure-mcp", version.GetVersion())

	service := server.NewService(cfg)
	if err := service.Initialize(); err != nil {
		logger.Errorf("Failed to initialize service: %v", err)
		os.Exit(1)
	}

	if err := service.Run(); err != nil {
		logger.Errorf("Server error: %v", err)
		os.Exit(1)
	}
}

// Package server hosts the Azure tools behind an MCP server over stdio, SSE or
// streamable HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Azure/azure-mcp/internal/auth"
	"github.com/Azure/azure-mcp/internal/azureclient"
	"github.com/Azure/azure-mcp/internal/components"
	"github.com/Azure/azure-mcp/internal/components/appservice"
	"github.com/Azure/azure-mcp/internal/components/compute"
	"github.com/Azure/azure-mcp/internal/components/keyvault"
	"github.com/Azure/azure-mcp/internal/components/storage"
	"github.com/Azure/azure-mcp/internal/config"
	mcpctx "github.com/Azure/azure-mcp/internal/ctx"
	"github.com/Azure/azure-mcp/internal/logger"
	"github.com/Azure/azure-mcp/internal/registry"
	"github.com/Azure/azure-mcp/internal/version"
)

const (
	serverName      = "azure-mcp"
	shutdownTimeout = 10 * time.Second
)

const instructions = `Tools for Azure App Service, Key Vault, Blob Storage and Virtual Machines.
Every tool call authenticates with the caller's Azure token when one is supplied
(X-Azure-Token header or AZURE_MCP_ACCESS_TOKEN), otherwise with DefaultAzureCredential.
Secret values returned by Key Vault tools are sensitive; do not repeat them unless asked.`

// Service owns the MCP server and the tool registry behind it
type Service struct {
	cfg       *config.ConfigData
	creds     azureclient.CredentialProvider
	registry  *registry.ToolRegistry
	mcpServer *server.MCPServer
	tools     []string
}

// NewService creates a Service for cfg. Call Initialize before Run.
func NewService(cfg *config.ConfigData) *Service {
	return &Service{
		cfg:   cfg,
		creds: azureclient.NewDefaultCredentialProvider(),
	}
}

// Initialize builds the MCP server and registers the enabled components
func (s *Service) Initialize() error {
	logger.Infof("Initializing %s %s", serverName, version.GetVersion())

	s.mcpServer = server.NewMCPServer(
		serverName,
		version.GetVersion(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithLogging(),
		server.WithInstructions(instructions),
	)

	s.registry = registry.NewToolRegistry()
	for _, comp := range components.GetAllComponents() {
		if !components.IsComponentEnabled(comp.Name, s.cfg.EnabledComponents) {
			logger.Debugf("Component %s disabled", comp.Name)
			continue
		}
		if err := s.registerComponent(comp.Name); err != nil {
			return err
		}
	}

	s.tools = s.registry.ConfigureMCPServer(s.mcpServer, s.cfg.IsReadOnly())
	logger.Infof("Registered %d tools (access level %s)", len(s.tools), s.cfg.AccessLevel)
	return nil
}

func (s *Service) registerComponent(name string) error {
	switch name {
	case components.AppService:
		appservice.RegisterTools(s.registry, appservice.NewHandlers(appservice.NewClientFactory(s.creds)), s.cfg)
	case components.KeyVault:
		h := keyvault.NewHandlers(keyvault.NewSecretsClientFactory(s.creds), keyvault.NewVaultsClientFactory(s.creds))
		keyvault.RegisterTools(s.registry, h, s.cfg)
	case components.Storage:
		factory := storage.NewClientFactory(s.creds)
		storage.RegisterTools(s.registry, storage.NewHandlers(factory), storage.NewBlobsDispatcher(factory), s.cfg)
	case components.Compute:
		compute.RegisterTools(s.registry, compute.NewHandlers(compute.NewClientFactory(s.creds)), s.cfg)
	default:
		return errors.Newf("unknown component: %s", name)
	}
	logger.Debugf("Component %s registered", name)
	return nil
}

// Run serves the configured transport until it fails or the process is signalled
func (s *Service) Run() error {
	if s.mcpServer == nil {
		return errors.New("service is not initialized")
	}
	defer s.shutdownTelemetry()

	switch s.cfg.Transport {
	case config.TransportStdio:
		logger.Infof("Listening on stdio")
		return server.ServeStdio(s.mcpServer, server.WithStdioContextFunc(stdioContextFunc))
	case config.TransportSSE:
		addr := s.address()
		sse := server.NewSSEServer(s.mcpServer,
			server.WithBaseURL(fmt.Sprintf("http://%s", addr)),
			server.WithSSEContextFunc(httpContextFunc),
		)
		logger.Infof("SSE server listening on %s (endpoint /sse)", addr)
		return s.serveHTTP(addr, s.newSSEHandler(sse))
	case config.TransportStreamableHTTP:
		addr := s.address()
		handler, err := s.newStreamableHTTPHandler()
		if err != nil {
			return err
		}
		logger.Infof("Streamable HTTP server listening on %s (endpoint /mcp)", addr)
		return s.serveHTTP(addr, handler)
	default:
		return errors.Newf("invalid transport type: %s (must be 'stdio', 'sse' or 'streamable-http')", s.cfg.Transport)
	}
}

func (s *Service) address() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

func stdioContextFunc(c context.Context) context.Context {
	return mcpctx.WithAzureToken(c, os.Getenv(mcpctx.AccessTokenEnv))
}

func httpContextFunc(c context.Context, r *http.Request) context.Context {
	return mcpctx.WithAzureToken(c, r.Header.Get(string(mcpctx.AzureTokenKey)))
}

func (s *Service) newSSEHandler(sse *server.SSEServer) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/", sse)
	return mux
}

func (s *Service) newStreamableHTTPHandler() (http.Handler, error) {
	streamable := server.NewStreamableHTTPServer(s.mcpServer,
		server.WithEndpointPath("/mcp"),
		server.WithHTTPContextFunc(httpContextFunc),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	var mcpHandler http.Handler = streamable
	if s.cfg.Auth.ShouldAuthenticate(config.TransportStreamableHTTP) {
		middleware, err := auth.NewHTTPAuthMiddleware(s.cfg.Auth)
		if err != nil {
			return nil, err
		}
		mcpHandler = middleware.Middleware(streamable)
		mux.HandleFunc(auth.ProtectedResourcePath, auth.ProtectedResourceMetadataHandler(s.cfg.Auth))
		logger.Infof("Entra ID authentication enabled for /mcp (tenant %s)", s.cfg.Auth.EntraTenantID)
	}

	mux.Handle("/mcp", mcpHandler)
	return mux, nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		logger.Warnf("Failed to write health response: %v", err)
	}
}

// serveHTTP blocks until the listener fails or SIGINT/SIGTERM arrives, then
// drains in-flight requests.
func (s *Service) serveHTTP(addr string, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err, ok := <-errCh:
		if ok {
			return errors.Wrapf(err, "server on %s failed", addr)
		}
		return nil
	case sig := <-sigCh:
		logger.Infof("Received %s, shutting down", strings.ToUpper(sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}
	return nil
}

func (s *Service) shutdownTelemetry() {
	if s.cfg.TelemetryService == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.cfg.TelemetryService.Shutdown(ctx); err != nil {
		logger.Warnf("Failed to flush telemetry: %v", err)
	}
}

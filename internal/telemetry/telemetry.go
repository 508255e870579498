// Package telemetry wires OpenTelemetry tracing and Application Insights
// usage events for tool invocations.
package telemetry

import (
	"context"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/microsoft/ApplicationInsights-Go/appinsights"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	eventToolInvocation = "ToolInvocation"
	eventServiceStartup = "ServiceStartup"
)

// Service owns the tracer provider and the Application Insights client
type Service struct {
	config         *Config
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	appInsights    appinsights.TelemetryClient
}

// NewService creates a telemetry service. Until Initialize succeeds every
// method is a no-op.
func NewService(cfg *Config) *Service {
	return &Service{
		config: cfg,
		tracer: noop.NewTracerProvider().Tracer(cfg.ServiceName),
	}
}

// Initialize sets up exporters according to the configuration
func (s *Service) Initialize(ctx context.Context) error {
	if !s.config.Enabled {
		return nil
	}

	if s.config.InstrumentationKey != "" {
		aiCfg := appinsights.NewTelemetryConfiguration(s.config.InstrumentationKey)
		if s.config.IngestionEndpoint != "" {
			aiCfg.EndpointUrl = s.config.IngestionEndpoint
		}
		client := appinsights.NewTelemetryClientFromConfig(aiCfg)
		client.Context().CommonProperties["service"] = s.config.ServiceName
		client.Context().CommonProperties["version"] = s.config.ServiceVersion
		client.Context().CommonProperties["os"] = runtime.GOOS
		s.appInsights = client
	}

	if s.config.OTLPEndpoint == "" {
		return nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(s.config.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create OTLP trace exporter")
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", s.config.ServiceName),
		attribute.String("service.version", s.config.ServiceVersion),
	))
	if err != nil {
		return errors.Wrap(err, "failed to build telemetry resource")
	}

	s.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(s.tracerProvider)
	s.tracer = s.tracerProvider.Tracer(s.config.ServiceName)
	return nil
}

// StartToolSpan opens a span around a single tool call
func (s *Service) StartToolSpan(ctx context.Context, toolName string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "tool/"+toolName,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("mcp.tool.name", toolName)),
	)
}

// EndToolSpan records the outcome on span and ends it
func (s *Service) EndToolSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// TrackToolInvocation records a tool call with minimal, non-identifying data
func (s *Service) TrackToolInvocation(ctx context.Context, toolName, operation string, success bool) {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("mcp.tool.operation", operation),
		attribute.Bool("mcp.tool.success", success),
	)

	if s.appInsights == nil {
		return
	}
	event := appinsights.NewEventTelemetry(eventToolInvocation)
	event.Properties["toolName"] = toolName
	if operation != "" {
		event.Properties["operation"] = operation
	}
	if success {
		event.Properties["success"] = "true"
	} else {
		event.Properties["success"] = "false"
	}
	s.appInsights.Track(event)
}

// TrackServiceStartup records a startup event
func (s *Service) TrackServiceStartup(ctx context.Context) {
	if s.appInsights == nil {
		return
	}
	event := appinsights.NewEventTelemetry(eventServiceStartup)
	event.Properties["platform"] = runtime.GOOS + "/" + runtime.GOARCH
	s.appInsights.Track(event)
}

// Shutdown flushes pending spans and events
func (s *Service) Shutdown(ctx context.Context) error {
	if s.appInsights != nil {
		select {
		case <-s.appInsights.Channel().Close(5 * time.Second):
		case <-ctx.Done():
		}
	}
	if s.tracerProvider != nil {
		if err := s.tracerProvider.Shutdown(ctx); err != nil {
			return errors.Wrap(err, "failed to shut down tracer provider")
		}
	}
	return nil
}

package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope used by the gateways
const TracerName = "github.com/amaumene/unig/gateway"

// NewTracerProvider creates a tracer provider for the process. Spans are only
// exported when an exporter is passed; otherwise they stay in-process.
func NewTracerProvider(service, version string, exporters ...sdktrace.SpanExporter) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(
		attribute.String("service.name", service),
		attribute.String("service.version", version),
	)

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}
	for _, exp := range exporters {
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	return sdktrace.NewTracerProvider(opts...)
}

// OpenTraceFile returns an exporter appending finished spans to path as JSON.
// The returned func closes the file once the provider has shut down.
func OpenTraceFile(path string) (sdktrace.SpanExporter, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(f))
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	return exporter, f.Close, nil
}

// Tracer returns the gateway tracer from provider
func Tracer(provider trace.TracerProvider) trace.Tracer {
	return provider.Tracer(TracerName)
}

// Shutdown flushes provider, ignoring a nil provider
func Shutdown(ctx context.Context, provider *sdktrace.TracerProvider) error {
	if provider == nil {
		return nil
	}
	return provider.Shutdown(ctx)
}

// Package tracing builds the OpenTelemetry tracer provider used by the MCP
// server.
package tracing

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// Supported exporters.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// ServiceName identifies this process in exported spans.
const ServiceName = "plate-tools-mcp"

// NewProvider creates a tracer provider for the named exporter. The caller
// must Shutdown the provider to flush buffered spans.
//
// ExporterStdout writes one JSON document per span to w; the server keeps
// stdout for the protocol, so callers pass stderr. ExporterNone still records
// spans in-process but exports nothing.
func NewProvider(ctx context.Context, exporter string, w io.Writer, version string) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}

	switch exporter {
	case ExporterNone, "":
	case ExporterStdout:
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("failed to create exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", exporter)
	}

	return sdktrace.NewTracerProvider(opts...), nil
}

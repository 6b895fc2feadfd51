// Package tracing configures OpenTelemetry spans around each pipeline
// phase, with the exporter selected by config.Config.TraceExporter:
// "none" (default, no-op), "stdout", "otlp" (gRPC), or "jaeger".
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/kenchrcum/yts3"

// Shutdown flushes and stops the configured tracer provider. Callers
// should defer it immediately after Setup.
type Shutdown func(context.Context) error

// Setup installs a global TracerProvider for the given exporter kind.
// "none" installs a provider that never samples, so span creation is
// cheap and safe to leave in the code path unconditionally.
func Setup(ctx context.Context, exporterKind string) (Shutdown, error) {
	var (
		exporter sdktrace.SpanExporter
		err      error
	)

	switch exporterKind {
	case "", "none":
		tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.NeverSample()))
		otel.SetTracerProvider(tp)
		return tp.Shutdown, nil
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "otlp":
		exporter, err = otlptracegrpc.New(ctx)
	case "jaeger":
		exporter, err = jaeger.New(jaeger.WithCollectorEndpoint())
	default:
		return nil, fmt.Errorf("tracing: unknown exporter %q", exporterKind)
	}
	if err != nil {
		return nil, fmt.Errorf("tracing: create %s exporter: %w", exporterKind, err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName("yts3")))
	if err != nil {
		return nil, fmt.Errorf("tracing: build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Tracer returns the package-wide tracer used to open pipeline spans.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

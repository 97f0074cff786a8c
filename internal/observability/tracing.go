package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "syncdraft-api"

// Tracer starts request spans. It is a no-op until InitTracing installs a
// provider.
var Tracer trace.Tracer = otel.Tracer(serviceName)

// Tracing selects where spans go. An empty Endpoint with Stdout off leaves
// tracing disabled.
type Tracing struct {
	Endpoint    string
	Stdout      bool
	Ratio       float64
	Environment string
}

func (t Tracing) enabled() bool { return t.Endpoint != "" || t.Stdout }

func (t Tracing) exporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	if t.Endpoint != "" {
		return otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(t.Endpoint), otlptracehttp.WithInsecure())
	}
	return stdouttrace.New()
}

// InitTracing installs the global tracer provider and returns its shutdown
// func. Child spans follow the caller's sampling decision; new traces are
// sampled at Ratio.
func InitTracing(ctx context.Context, t Tracing) (func(context.Context) error, error) {
	if !t.enabled() {
		return func(context.Context) error { return nil }, nil
	}

	exp, err := t.exporter(ctx)
	if err != nil {
		return nil, fmt.Errorf("trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewSchemaless(
			semconv.ServiceName(serviceName),
			semconv.DeploymentEnvironment(t.Environment),
		)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(t.Ratio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	Tracer = tp.Tracer(serviceName)

	return tp.Shutdown, nil
}

package app

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// initTracing exports processor call spans over OTLP/gRPC when an endpoint is
// configured. Without one the global no-op provider stays in place.
func (app *Application) initTracing(ctx context.Context) error {
	if app.cfg.OTLPEndpoint == "" {
		app.logger.Info("tracing disabled - OTEL_EXPORTER_OTLP_ENDPOINT not set")
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("threeds-gateway"),
			semconv.ServiceVersion(BuildVersion),
			semconv.DeploymentEnvironment(app.cfg.Env),
			attribute.String("threeds.component", "gateway"),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(app.cfg.OTLPEndpoint)}
	if app.cfg.OTLPInsecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	app.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sampler(app.cfg.TraceSampleRate)),
	)

	otel.SetTracerProvider(app.tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	app.logger.Info("tracing enabled",
		"endpoint", app.cfg.OTLPEndpoint,
		"sample_rate", app.cfg.TraceSampleRate,
		"insecure", app.cfg.OTLPInsecure,
	)
	return nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0.0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// shutdownTracing flushes buffered spans.
func (app *Application) shutdownTracing(ctx context.Context) {
	if app.tracerProvider == nil {
		return
	}
	if err := app.tracerProvider.Shutdown(ctx); err != nil {
		app.logger.Error("error shutting down tracer provider", "error", err)
	}
}

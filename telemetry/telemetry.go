package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio-service/config"
	"portfolio-service/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// ShutdownFunc flushes and stops the exporters.
type ShutdownFunc func(context.Context) error

const shutdownTimeout = 5 * time.Second

type exporters struct {
	spans   trace.SpanExporter
	metrics metric.Exporter
}

// Init installs the global propagator, tracer provider and meter provider.
// With no OTLP endpoint configured only the propagator is installed and the
// global providers stay no-op, so the content and chat instruments cost
// nothing.
func Init(ctx context.Context, cfg config.Config, log *logger.Logger) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	tc := cfg.Telemetry
	tracesEndpoint := pickEndpoint(tc.OTLPEndpoint, tc.OTLPTracesEndpoint)
	metricsEndpoint := pickEndpoint(tc.OTLPEndpoint, tc.OTLPMetricsEndpoint)
	if tracesEndpoint == "" && metricsEndpoint == "" {
		log.Info("telemetry disabled", "reason", "no OTLP endpoint configured")
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(
			semconv.ServiceName(tc.ServiceName),
			semconv.ServiceVersion(tc.ServiceVersion),
			attribute.String("deployment.environment", cfg.AppEnv),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	var exp exporters
	if isHTTPProtocol(tc.OTLPProtocol) {
		exp, err = httpExporters(ctx, tc, tracesEndpoint, metricsEndpoint)
	} else {
		exp, err = grpcExporters(ctx, tc, tracesEndpoint, metricsEndpoint)
	}
	if err != nil {
		return nil, err
	}

	tracerProvider := trace.NewTracerProvider(
		trace.WithBatcher(exp.spans),
		trace.WithResource(res),
	)
	meterProvider := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(exp.metrics, metric.WithInterval(tc.MetricExportInterval))),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)

	log.Info("telemetry enabled",
		"protocol", tc.OTLPProtocol,
		"traces_endpoint", tracesEndpoint,
		"metrics_endpoint", metricsEndpoint,
		"service", tc.ServiceName,
	)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		return errors.Join(tracerProvider.Shutdown(ctx), meterProvider.Shutdown(ctx))
	}, nil
}

// pickEndpoint prefers the signal-specific endpoint over the shared one.
func pickEndpoint(shared, signal string) string {
	if signal != "" {
		return signal
	}
	return shared
}

func isHTTPProtocol(protocol string) bool {
	return protocol == "http/protobuf" || protocol == "http"
}

func httpExporters(ctx context.Context, tc config.TelemetryConfig, tracesEndpoint, metricsEndpoint string) (exporters, error) {
	traceOpts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(tracesEndpoint),
		otlptracehttp.WithHeaders(tc.OTLPHeaders),
		otlptracehttp.WithTimeout(tc.ExportTimeout),
	}
	metricOpts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(metricsEndpoint),
		otlpmetrichttp.WithHeaders(tc.OTLPHeaders),
		otlpmetrichttp.WithTimeout(tc.ExportTimeout),
	}
	if tc.OTLPInsecure {
		traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
		metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
	}

	spans, err := otlptracehttp.New(ctx, traceOpts...)
	if err != nil {
		return exporters{}, fmt.Errorf("create trace exporter: %w", err)
	}
	metrics, err := otlpmetrichttp.New(ctx, metricOpts...)
	if err != nil {
		return exporters{}, fmt.Errorf("create metric exporter: %w", err)
	}
	return exporters{spans: spans, metrics: metrics}, nil
}

func grpcExporters(ctx context.Context, tc config.TelemetryConfig, tracesEndpoint, metricsEndpoint string) (exporters, error) {
	traceOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(tracesEndpoint),
		otlptracegrpc.WithHeaders(tc.OTLPHeaders),
		otlptracegrpc.WithTimeout(tc.ExportTimeout),
	}
	metricOpts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(metricsEndpoint),
		otlpmetricgrpc.WithHeaders(tc.OTLPHeaders),
		otlpmetricgrpc.WithTimeout(tc.ExportTimeout),
	}
	if tc.OTLPInsecure {
		traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
	}

	spans, err := otlptracegrpc.New(ctx, traceOpts...)
	if err != nil {
		return exporters{}, fmt.Errorf("create trace exporter: %w", err)
	}
	metrics, err := otlpmetricgrpc.New(ctx, metricOpts...)
	if err != nil {
		return exporters{}, fmt.Errorf("create metric exporter: %w", err)
	}
	return exporters{spans: spans, metrics: metrics}, nil
}

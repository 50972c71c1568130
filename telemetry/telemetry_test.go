package telemetry

import (
	"context"
	"testing"
	"time"

	"portfolio-service/config"
	"portfolio-service/logger"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
)

func TestInitDisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), config.Config{}, logger.NewNop())
	assert.NoError(t, err)
	assert.NotNil(t, otel.GetTextMapPropagator())
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitHTTPExporters(t *testing.T) {
	cfg := config.Config{
		AppEnv: "test",
		Telemetry: config.TelemetryConfig{
			ServiceName:          "portfolio-service",
			ServiceVersion:       "test",
			OTLPEndpoint:         "localhost:4318",
			OTLPProtocol:         "http/protobuf",
			OTLPInsecure:         true,
			ExportTimeout:        time.Second,
			MetricExportInterval: time.Minute,
		},
	}

	shutdown, err := Init(context.Background(), cfg, logger.NewNop())
	assert.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
}

func TestInitGRPCExportersWithSignalEndpoints(t *testing.T) {
	cfg := config.Config{
		AppEnv: "test",
		Telemetry: config.TelemetryConfig{
			ServiceName:          "portfolio-service",
			OTLPTracesEndpoint:   "localhost:4317",
			OTLPMetricsEndpoint:  "localhost:4317",
			OTLPProtocol:         "grpc",
			OTLPInsecure:         true,
			ExportTimeout:        time.Second,
			MetricExportInterval: time.Minute,
		},
	}

	shutdown, err := Init(context.Background(), cfg, logger.NewNop())
	assert.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
}

func TestPickEndpoint(t *testing.T) {
	assert.Equal(t, "shared:4317", pickEndpoint("shared:4317", ""))
	assert.Equal(t, "traces:4317", pickEndpoint("shared:4317", "traces:4317"))
	assert.Equal(t, "", pickEndpoint("", ""))
}

func TestIsHTTPProtocol(t *testing.T) {
	assert.True(t, isHTTPProtocol("http/protobuf"))
	assert.True(t, isHTTPProtocol("http"))
	assert.False(t, isHTTPProtocol("grpc"))
	assert.False(t, isHTTPProtocol(""))
}

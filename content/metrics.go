package content

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type storeMetrics struct {
	refreshes     metric.Int64Counter
	duration      metric.Float64Histogram
	tableFailures metric.Int64Counter
}

func newStoreMetrics() storeMetrics {
	meter := otel.Meter("portfolio-service/content")
	refreshes, _ := meter.Int64Counter(
		"content.refreshes",
		metric.WithDescription("Content refreshes by outcome"),
	)
	duration, _ := meter.Float64Histogram(
		"content.refresh.duration",
		metric.WithDescription("Duration of content refreshes"),
		metric.WithUnit("s"),
	)
	tableFailures, _ := meter.Int64Counter(
		"content.table.failures",
		metric.WithDescription("Failed table fetches during refresh"),
	)
	return storeMetrics{refreshes: refreshes, duration: duration, tableFailures: tableFailures}
}

func (m storeMetrics) recordRefresh(ctx context.Context, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	if m.refreshes != nil {
		m.refreshes.Add(ctx, 1, attrs)
	}
	if m.duration != nil {
		m.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
}

func (m storeMetrics) recordTableFailure(ctx context.Context, table string) {
	if m.tableFailures != nil {
		m.tableFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("table", table)))
	}
}

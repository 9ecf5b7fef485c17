package serving

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type servingMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
}

var servingMetricsInit = false
var servingMetricsInst servingMetrics

func ensureServingMetrics() {
	if servingMetricsInit {
		return
	}
	meter := otel.Meter("github.com/riversideu/studentrisk/backend/serving")

	requestCount, err := meter.Int64Counter(
		"ai.serving.request.count",
		metric.WithDescription("Number of serving endpoint requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"ai.serving.request.duration",
		metric.WithDescription("Serving endpoint request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"ai.serving.request.errors",
		metric.WithDescription("Number of serving endpoint request errors"),
	)
	if err != nil {
		return
	}

	servingMetricsInst = servingMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
	}
	servingMetricsInit = true
}

func recordServingMetric(ctx context.Context, endpoint string, statusCode int, duration time.Duration, err error) {
	ensureServingMetrics()
	if !servingMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.endpoint", endpoint),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	servingMetricsInst.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	servingMetricsInst.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		servingMetricsInst.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

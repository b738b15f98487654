package calculator

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instruments, initialized once via InitMetrics().
var (
	pressCounter     metric.Int64Counter
	evalHistogram    metric.Float64Histogram
	errorCounter     metric.Int64Counter
	httpErrorCounter metric.Int64Counter
	resultGauge      metric.Float64Gauge
)

// Error tiers recorded on calculator.errors.total.
const (
	tierEvaluation = "evaluation"
	tierTransition = "transition"
)

// InitMetrics registers custom OTel metric instruments for the calculator domain.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	pressCounter, err = meter.Int64Counter("calculator.presses.total",
		metric.WithDescription("Total number of calculator button presses"),
		metric.WithUnit("{press}"),
	)
	if err != nil {
		return fmt.Errorf("creating press counter: %w", err)
	}

	evalHistogram, err = meter.Float64Histogram("calculator.evaluation.duration",
		metric.WithDescription("Duration of expression evaluations in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		return fmt.Errorf("creating evaluation histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of calculator errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	httpErrorCounter, err = meter.Int64Counter("calculator.http.errors.total",
		metric.WithDescription("Total number of calculator requests answered with an error status"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating http error counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The result of the last successful evaluation"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	return nil
}

func recordPress(ctx context.Context, button string) {
	if pressCounter == nil {
		return
	}
	pressCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("button.kind", ButtonKind(button))))
}

// recordError counts calculator failures by tier and button kind. Request
// level failures go to httpErrorCounter through observability.RecordError.
func recordError(ctx context.Context, tier, button string) {
	if errorCounter == nil {
		return
	}
	errorCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tier", tier),
		attribute.String("button.kind", ButtonKind(button)),
	))
}

// RecordEvaluation is an EvaluationObserver feeding the evaluation metrics.
func RecordEvaluation(ctx context.Context, event EvaluationEvent) {
	if evalHistogram == nil {
		return
	}

	elapsed := float64(event.Duration.Microseconds()) / 1000.0 // ms
	evalHistogram.Record(ctx, elapsed)

	if event.Err != nil {
		recordError(ctx, tierEvaluation, "=")
		return
	}
	if !math.IsInf(event.Result, 0) && !math.IsNaN(event.Result) {
		resultGauge.Record(ctx, event.Result)
	}
}

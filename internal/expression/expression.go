// Package expression evaluates the arithmetic text accumulated by the
// calculator. Input is restricted to numbers, the four arithmetic operators,
// parentheses and spaces before any engine sees it.
package expression

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Engine names accepted by New.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
)

var tracer = otel.Tracer("expression")

// Evaluator turns expression text into a number or fails.
type Evaluator interface {
	Evaluate(ctx context.Context, expression string) (float64, error)
}

// New returns the named engine wrapped with tracing.
func New(engine string) (Evaluator, error) {
	switch engine {
	case EngineExpr, "":
		return Traced(EngineExpr, NewExprEvaluator()), nil
	case EngineCEL:
		cel, err := NewCELEvaluator()
		if err != nil {
			return nil, err
		}
		return Traced(EngineCEL, cel), nil
	default:
		return nil, fmt.Errorf("expression: unknown engine %q", engine)
	}
}

type tracedEvaluator struct {
	engine string
	next   Evaluator
}

// Traced records an expression.evaluate span around every call to next.
func Traced(engine string, next Evaluator) Evaluator {
	return &tracedEvaluator{engine: engine, next: next}
}

func (t *tracedEvaluator) Evaluate(ctx context.Context, expression string) (float64, error) {
	ctx, span := tracer.Start(ctx, "expression.evaluate",
		trace.WithAttributes(
			attribute.String("expression.engine", t.engine),
			attribute.Int("expression.length", len(expression)),
		),
	)
	defer span.End()

	result, err := t.next.Evaluate(ctx, expression)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation failed")
		return 0, err
	}

	if !math.IsInf(result, 0) && !math.IsNaN(result) {
		span.SetAttributes(attribute.Float64("expression.result", result))
	}
	span.SetStatus(codes.Ok, "")
	return result, nil
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrNonNumericResult, value)
	}
}

package expression

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func engines(t *testing.T) map[string]Evaluator {
	t.Helper()

	cel, err := NewCELEvaluator()
	require.NoError(t, err)

	return map[string]Evaluator{
		EngineExpr: NewExprEvaluator(),
		EngineCEL:  cel,
	}
}

func TestEvaluatorsAgreeOnArithmetic(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{expr: "5+3+2", want: 10},
		{expr: "8/2", want: 4},
		{expr: "10/4", want: 2.5},
		{expr: "2+3*4", want: 14},
		{expr: "-5+3", want: -2},
		{expr: "5*-3", want: -15},
		{expr: "1.5+1.5", want: 3},
		{expr: "05", want: 5},
		{expr: "2*(3+4)", want: 14},
		{expr: "99999999999999999999+1", want: 1e20},
		{expr: "1e+22*2", want: 2e22},
		{expr: "1e+22+1", want: 1e22},
	}

	for name, evaluator := range engines(t) {
		for _, tc := range tests {
			t.Run(name+"/"+tc.expr, func(t *testing.T) {
				got, err := evaluator.Evaluate(context.Background(), tc.expr)
				require.NoError(t, err)
				assert.InDelta(t, tc.want, got, 1e-9)
			})
		}
	}
}

func TestEvaluatorsRejectMalformedExpressions(t *testing.T) {
	tests := []string{"", "5+", "+", "5+*3", "()", "1.2.3", "Invalid Expression", "5**2"}

	for name, evaluator := range engines(t) {
		for _, expr := range tests {
			t.Run(name+"/"+expr, func(t *testing.T) {
				_, err := evaluator.Evaluate(context.Background(), expr)
				require.Error(t, err)

				var evalErr *EvaluationError
				require.True(t, errors.As(err, &evalErr), "expected EvaluationError, got %T", err)
				assert.Equal(t, name, evalErr.Engine)
				assert.Equal(t, expr, evalErr.Expr)
			})
		}
	}
}

func TestExprEvaluatorDivisionByZeroIsInfinite(t *testing.T) {
	got, err := NewExprEvaluator().Evaluate(context.Background(), "5/0")
	require.NoError(t, err)
	assert.True(t, math.IsInf(got, 1), "expected +Inf, got %v", got)
}

func TestNewSelectsEngine(t *testing.T) {
	for _, engine := range []string{"", EngineExpr, EngineCEL} {
		evaluator, err := New(engine)
		require.NoError(t, err)

		got, err := evaluator.Evaluate(context.Background(), "6*7")
		require.NoError(t, err)
		assert.Equal(t, 42.0, got)
	}

	_, err := New("ncalc")
	assert.Error(t, err)
}

func TestWrapEvaluationErrorKeepsExistingMetadata(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{Engine: EngineExpr, Err: base}

	err := wrapEvaluationError(EngineCEL, "5+", existing)

	assert.ErrorIs(t, err, base)
	assert.Equal(t, EngineExpr, existing.Engine)
	assert.Equal(t, "5+", existing.Expr)
	assert.Contains(t, err.Error(), `expr="5+"`)
}

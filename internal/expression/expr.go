package expression

import (
	"context"

	exprlang "github.com/expr-lang/expr"
)

// ExprEvaluator evaluates expressions with github.com/expr-lang/expr.
type ExprEvaluator struct{}

func NewExprEvaluator() *ExprEvaluator {
	return &ExprEvaluator{}
}

func (e *ExprEvaluator) Evaluate(_ context.Context, expression string) (float64, error) {
	normalized, err := Normalize(expression)
	if err != nil {
		return 0, wrapEvaluationError(EngineExpr, expression, err)
	}

	program, err := exprlang.Compile(normalized,
		exprlang.Env(map[string]any{}),
		exprlang.DisableAllBuiltins(),
	)
	if err != nil {
		return 0, wrapEvaluationError(EngineExpr, expression, err)
	}

	out, err := exprlang.Run(program, map[string]any{})
	if err != nil {
		return 0, wrapEvaluationError(EngineExpr, expression, err)
	}

	result, err := toFloat(out)
	if err != nil {
		return 0, wrapEvaluationError(EngineExpr, expression, err)
	}
	return result, nil
}

package expression

import (
	"context"
	"fmt"

	celgo "github.com/google/cel-go/cel"
)

// CELEvaluator evaluates expressions with cel-go. Literals are normalised to
// doubles first since CEL has no implicit int/double conversion.
type CELEvaluator struct {
	env *celgo.Env
}

func NewCELEvaluator() (*CELEvaluator, error) {
	env, err := celgo.NewEnv()
	if err != nil {
		return nil, fmt.Errorf("expression: creating cel env: %w", err)
	}
	return &CELEvaluator{env: env}, nil
}

func (e *CELEvaluator) Evaluate(_ context.Context, expression string) (float64, error) {
	normalized, err := Normalize(expression)
	if err != nil {
		return 0, wrapEvaluationError(EngineCEL, expression, err)
	}

	ast, issues := e.env.Compile(normalized)
	if issues != nil && issues.Err() != nil {
		return 0, wrapEvaluationError(EngineCEL, expression, issues.Err())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return 0, wrapEvaluationError(EngineCEL, expression, err)
	}

	out, _, err := program.Eval(map[string]any{})
	if err != nil {
		return 0, wrapEvaluationError(EngineCEL, expression, err)
	}

	result, err := toFloat(out.Value())
	if err != nil {
		return 0, wrapEvaluationError(EngineCEL, expression, err)
	}
	return result, nil
}

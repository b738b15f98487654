package calculator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-chi-calculator/internal/expression"
	"go-chi-calculator/internal/observability"
)

// Button kinds, also used as metric labels.
const (
	KindDigit     = "digit"
	KindOperator  = "operator"
	KindEquals    = "equals"
	KindClear     = "clear"
	KindBackspace = "backspace"
	KindUnknown   = "unknown"
)

// ButtonKind classifies a button token.
func ButtonKind(button string) string {
	switch button {
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9", ".":
		return KindDigit
	case "+", "-", "*", "/":
		return KindOperator
	case "=":
		return KindEquals
	case "C":
		return KindClear
	case "Backspace":
		return KindBackspace
	default:
		return KindUnknown
	}
}

// EvaluationEvent describes one "=" evaluation.
type EvaluationEvent struct {
	Expression string
	Result     float64
	Duration   time.Duration
	Err        error
}

// EvaluationObserver is notified after every evaluation.
type EvaluationObserver func(ctx context.Context, event EvaluationEvent)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger fixes the engine's logger instead of the trace-aware
// process logger.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithEvaluationObserver(observer EvaluationObserver) EngineOption {
	return func(e *Engine) {
		e.observer = observer
	}
}

// Engine applies button presses to a State. It keeps no per-user data and is
// safe for concurrent use on distinct states.
type Engine struct {
	evaluator expression.Evaluator
	logger    *zap.Logger
	observer  EvaluationObserver
}

func NewEngine(evaluator expression.Evaluator, opts ...EngineOption) *Engine {
	e := &Engine{evaluator: evaluator}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Apply mutates s according to button. Evaluator failures on "=" are
// recovered inside s. Unknown buttons return ErrUnknownButton and leave s
// untouched; any other failure is a *TransitionError.
func (e *Engine) Apply(ctx context.Context, s *State, button string) error {
	switch ButtonKind(button) {
	case KindDigit:
		handleDigit(s, button)
	case KindOperator:
		if err := handleOperation(s, Operation(button)); err != nil {
			return &TransitionError{Button: button, Err: err}
		}
	case KindEquals:
		e.evaluate(ctx, s)
	case KindClear:
		*s = NewState()
	case KindBackspace:
		backspace(s)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownButton, button)
	}
	return nil
}

func handleDigit(s *State, digit string) {
	if s.IsNewInput {
		s.Display = digit
		s.CombinedDisplay += digit
		s.IsNewInput = false
		return
	}

	if digit == "." && strings.Contains(s.Display, ".") {
		return
	}

	s.Display += digit
	s.CombinedDisplay += digit
}

func handleOperation(s *State, op Operation) error {
	if !s.IsNewInput {
		if err := performCalculation(s); err != nil {
			return err
		}
	}

	current, err := strconv.ParseFloat(s.Display, 64)
	if err != nil {
		return err
	}

	s.Result = current
	s.Operation = op
	s.IsNewInput = true
	s.CombinedDisplay += string(op)
	return nil
}

// performCalculation folds Display into Result with the pending operation.
// With no pending operation Display becomes the first operand. Division by
// zero yields an infinity or NaN.
func performCalculation(s *State) error {
	current, err := strconv.ParseFloat(s.Display, 64)
	if err != nil {
		return err
	}

	switch s.Operation {
	case OpNone:
		s.Result = current
	case OpAdd:
		s.Result += current
	case OpSubtract:
		s.Result -= current
	case OpMultiply:
		s.Result *= current
	case OpDivide:
		s.Result /= current
	}

	s.Display = FormatNumber(s.Result)
	s.Operation = OpNone
	s.IsNewInput = true
	return nil
}

func (e *Engine) evaluate(ctx context.Context, s *State) {
	expr := s.CombinedDisplay

	start := time.Now()
	result, err := e.evaluator.Evaluate(ctx, expr)
	if e.observer != nil {
		e.observer(ctx, EvaluationEvent{
			Expression: expr,
			Result:     result,
			Duration:   time.Since(start),
			Err:        err,
		})
	}

	if err != nil {
		e.log(ctx).Error("error evaluating expression",
			zap.String("expression", expr),
			zap.Error(err),
		)
		*s = State{
			Display:         InvalidExpression,
			CombinedDisplay: InvalidExpression,
			IsNewInput:      true,
		}
		return
	}

	text := FormatNumber(result)
	s.Display = text
	s.CombinedDisplay = text
	s.Result = result
	s.Operation = OpNone
	s.IsNewInput = true
}

// backspace edits CombinedDisplay only; Display, Result and Operation keep
// their values until the next digit, operator or "=".
func backspace(s *State) {
	if len(s.CombinedDisplay) > 1 {
		s.CombinedDisplay = s.CombinedDisplay[:len(s.CombinedDisplay)-1]
	} else {
		s.CombinedDisplay = "0"
	}

	if s.CombinedDisplay == "" || s.CombinedDisplay == "0" {
		s.IsNewInput = true
	}
}

func (e *Engine) log(ctx context.Context) *zap.Logger {
	if e.logger != nil {
		return e.logger
	}
	return observability.LoggerWithTrace(ctx)
}

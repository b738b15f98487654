package calculator

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/session"
)

// Service resolves a user's state, applies presses through the Engine and
// writes the result back. Presses for the same user are serialised within
// this process.
type Service struct {
	store  session.Store[State]
	engine *Engine
	locks  *keyedMutex
}

func NewService(store session.Store[State], engine *Engine) *Service {
	return &Service{
		store:  store,
		engine: engine,
		locks:  newKeyedMutex(),
	}
}

// StepResult records the state after one press of a sequence.
type StepResult struct {
	Button string
	State  State
}

// State returns the user's current state without changing it.
func (s *Service) State(ctx context.Context, userID string) (State, error) {
	state, err := s.store.Get(ctx, userID)
	if err != nil {
		return State{}, fmt.Errorf("load state: %w", err)
	}
	return state, nil
}

// Press applies one button for userID and persists the new state. Only store
// failures are returned; calculator failures end up in the display.
func (s *Service) Press(ctx context.Context, userID, button string) (State, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	state, err := s.store.Get(ctx, userID)
	if err != nil {
		return State{}, fmt.Errorf("load state: %w", err)
	}

	s.apply(ctx, &state, userID, button)

	if err := s.store.Put(ctx, userID, state); err != nil {
		return State{}, fmt.Errorf("save state: %w", err)
	}
	return state, nil
}

// PressSequence applies buttons in order as one read-modify-write, tracing
// each step as a child span of ctx.
func (s *Service) PressSequence(ctx context.Context, userID string, buttons []string) ([]StepResult, State, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	state, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, State{}, fmt.Errorf("load state: %w", err)
	}

	steps := make([]StepResult, 0, len(buttons))
	for i, button := range buttons {
		stepCtx, stepSpan := tracer.Start(ctx, fmt.Sprintf("calculator.sequence.step.%d", i),
			trace.WithAttributes(
				attribute.Int("sequence.step.index", i),
				attribute.String("sequence.step.button", button),
			),
		)

		s.apply(stepCtx, &state, userID, button)

		stepSpan.SetAttributes(attribute.String("calculator.display", state.Display))
		stepSpan.SetStatus(codes.Ok, "")
		stepSpan.End()

		steps = append(steps, StepResult{Button: button, State: state})
	}

	if err := s.store.Put(ctx, userID, state); err != nil {
		return nil, State{}, fmt.Errorf("save state: %w", err)
	}
	return steps, state, nil
}

func (s *Service) apply(ctx context.Context, state *State, userID, button string) {
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	logger.Info("button pressed",
		zap.String("button", button),
		zap.String("user_id", userID),
		zap.String("request_id", requestID),
	)
	logger.Debug("before processing", stateFields(*state)...)

	recordPress(ctx, button)

	err := s.engine.Apply(ctx, state, button)
	switch {
	case err == nil:
	case errors.Is(err, ErrUnknownButton):
		logger.Warn("invalid button pressed",
			zap.String("button", button),
			zap.String("request_id", requestID),
		)
	default:
		var transitionErr *TransitionError
		if errors.As(err, &transitionErr) {
			state.Display = transitionErr.DisplayText()
		} else {
			state.Display = "Error: " + err.Error()
		}
		recordError(ctx, tierTransition, button)
		trace.SpanFromContext(ctx).RecordError(err)
		logger.Error("error processing button press",
			zap.String("button", button),
			zap.Error(err),
			zap.String("request_id", requestID),
		)
	}

	logger.Info("after processing", stateFields(*state)...)
}

func stateFields(s State) []zap.Field {
	return []zap.Field{
		zap.String("display", s.Display),
		zap.Float64("result", s.Result),
		zap.String("operation", s.Operation.Name()),
		zap.Bool("is_new_input", s.IsNewInput),
		zap.String("combined_display", s.CombinedDisplay),
	}
}

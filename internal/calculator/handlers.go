package calculator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go-chi-calculator/internal/expression"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/session"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

const (
	// MaxRequestBytes bounds every calculator request body.
	MaxRequestBytes = 16 << 10
	// MaxSequenceLength bounds the buttons applied by one sequence request.
	MaxSequenceLength = 64
)

// Handler serves the calculator endpoints. Routes must sit behind
// session.Identity so every request carries a user identifier.
type Handler struct {
	service   *Service
	evaluator expression.Evaluator
}

func NewHandler(service *Service, evaluator expression.Evaluator) *Handler {
	return &Handler{service: service, evaluator: evaluator}
}

// ---------------------------------------------------------------------------
// Handlers: per-user state
// ---------------------------------------------------------------------------

// Show handles GET /calculator and renders the current state without changing it.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, "calculator.show",
		trace.WithAttributes(
			attribute.String("request.id", observability.RequestIDFromContext(ctx)),
		),
	)
	defer span.End()

	state, err := h.service.State(ctx, session.UserIDFromContext(ctx))
	if err != nil {
		observability.RecordError(ctx, span, logger, httpErrorCounter, "show", "session store unavailable", err, http.StatusServiceUnavailable, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	h.render(w, r, state)
}

// Press handles POST /calculator/press. The button comes from the "button"
// form field, or from a JSON body when Content-Type is application/json.
func (h *Handler) Press(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	userID := session.UserIDFromContext(ctx)

	// --- 1. Custom child span ---
	ctx, span := tracer.Start(ctx, "calculator.press",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	// --- 2. Decode request ---
	button, err := decodeButton(r)
	if err != nil {
		observability.RecordError(ctx, span, logger, httpErrorCounter, "press", "invalid request body", err, decodeErrorStatus(err), w)
		return
	}
	span.SetAttributes(
		attribute.String("calculator.button", button),
		attribute.String("calculator.button.kind", ButtonKind(button)),
	)

	// --- 3. Apply the press ---
	state, err := h.service.Press(ctx, userID, button)
	if err != nil {
		observability.RecordError(ctx, span, logger, httpErrorCounter, "press", "session store unavailable", err, http.StatusServiceUnavailable, w)
		return
	}

	// --- 4. Span attributes with the outcome ---
	span.SetAttributes(
		attribute.String("calculator.display", state.Display),
		attribute.String("calculator.operation", state.Operation.Name()),
	)
	span.SetStatus(codes.Ok, "")

	// --- 5. Render ---
	h.render(w, r, state)
}

// ---------------------------------------------------------------------------
// Handler: button sequences (nested spans)
// ---------------------------------------------------------------------------

// Sequence handles POST /calculator/sequence. It applies several presses to
// the caller's state in order with a child span for every step.
func (h *Handler) Sequence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	// Parent span for the entire sequence
	ctx, span := tracer.Start(ctx, "calculator.sequence",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req SequenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, httpErrorCounter, "sequence", "invalid request body", err, decodeErrorStatus(err), w)
		return
	}

	if len(req.Buttons) == 0 {
		observability.RecordError(ctx, span, logger, httpErrorCounter, "sequence", "no buttons provided", fmt.Errorf("buttons array is empty"), http.StatusBadRequest, w)
		return
	}

	if len(req.Buttons) > MaxSequenceLength {
		observability.RecordError(ctx, span, logger, httpErrorCounter, "sequence", "too many buttons",
			fmt.Errorf("%d buttons exceed the limit of %d", len(req.Buttons), MaxSequenceLength), http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.Int("sequence.steps_count", len(req.Buttons)))

	steps, state, err := h.service.PressSequence(ctx, session.UserIDFromContext(ctx), req.Buttons)
	if err != nil {
		observability.RecordError(ctx, span, logger, httpErrorCounter, "sequence", "session store unavailable", err, http.StatusServiceUnavailable, w)
		return
	}

	span.AddEvent("sequence.complete", trace.WithAttributes(
		attribute.String("display", state.Display),
		attribute.Int("total_steps", len(steps)),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("button sequence completed",
		zap.Int("steps", len(steps)),
		zap.String("display", state.Display),
		zap.String("request_id", requestID),
	)

	resp := SequenceResponse{
		Steps: make([]SequenceStep, 0, len(steps)),
		State: NewStateResponse(state),
	}
	for _, step := range steps {
		resp.Steps = append(resp.Steps, SequenceStep{
			Button:          step.Button,
			Display:         step.State.Display,
			CombinedDisplay: step.State.CombinedDisplay,
		})
	}
	handlers.WriteJSON(w, http.StatusOK, resp)
}

// ---------------------------------------------------------------------------
// Handler: stateless evaluation
// ---------------------------------------------------------------------------

// Evaluate handles POST /calculator/evaluate. It runs the configured
// evaluator without touching any user state.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.evaluate",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, httpErrorCounter, "evaluate", "invalid request body", err, decodeErrorStatus(err), w)
		return
	}

	result, err := h.evaluator.Evaluate(ctx, req.Expression)
	if err != nil {
		observability.RecordError(ctx, span, logger, httpErrorCounter, "evaluate", "invalid expression", err, http.StatusBadRequest, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	logger.Info("expression evaluated",
		zap.String("expression", req.Expression),
		zap.Float64("result", result),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, EvaluateResponse{
		Expression: req.Expression,
		Result:     finite(result),
		ResultText: FormatNumber(result),
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func decodeButton(r *http.Request) (string, error) {
	if isJSON(r.Header.Get("Content-Type")) {
		var req PressRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", err
		}
		return req.Button, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return r.PostForm.Get("button"), nil
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, state State) {
	if isJSON(r.Header.Get("Accept")) {
		handlers.WriteJSON(w, http.StatusOK, NewStateResponse(state))
		return
	}

	if err := renderPage(w, r, http.StatusOK, state); err != nil {
		ctx := r.Context()
		observability.LoggerWithTrace(ctx).Error("rendering calculator page",
			zap.Error(err),
			zap.String("request_id", observability.RequestIDFromContext(ctx)),
		)
		handlers.WriteError(w, http.StatusInternalServerError, "could not render page")
	}
}

// decodeErrorStatus maps a body decoding failure to 413 when the body hit
// MaxRequestBytes and 400 otherwise.
func decodeErrorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func isJSON(header string) bool {
	return strings.Contains(header, "application/json")
}

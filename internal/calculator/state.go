package calculator

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Operation is a pending arithmetic operator, stored as its button symbol.
type Operation string

const (
	OpNone     Operation = ""
	OpAdd      Operation = "+"
	OpSubtract Operation = "-"
	OpMultiply Operation = "*"
	OpDivide   Operation = "/"
)

// Name returns the label used in logs and metrics.
func (o Operation) Name() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	default:
		return "none"
	}
}

// InvalidExpression is shown when "=" is pressed on an expression the
// evaluator rejects.
const InvalidExpression = "Invalid Expression"

// State is one user's calculator.
type State struct {
	// Display is the number being typed or the last computed result.
	Display string
	// Result is the running accumulator for pairwise calculations.
	Result    float64
	Operation Operation
	// IsNewInput means the next digit starts a new number.
	IsNewInput bool
	// CombinedDisplay is the whole expression typed so far, evaluated on "=".
	CombinedDisplay string
}

// NewState returns the state of a freshly cleared calculator.
func NewState() State {
	return State{
		Display:    "0",
		IsNewInput: true,
	}
}

type stateJSON struct {
	Display         string    `json:"display"`
	CombinedDisplay string    `json:"combined_display"`
	Result          string    `json:"result"`
	Operation       Operation `json:"operation"`
	IsNewInput      bool      `json:"is_new_input"`
}

// MarshalJSON encodes Result as text so infinities and NaN survive storage.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		Display:         s.Display,
		CombinedDisplay: s.CombinedDisplay,
		Result:          strconv.FormatFloat(s.Result, 'g', -1, 64),
		Operation:       s.Operation,
		IsNewInput:      s.IsNewInput,
	})
}

func (s *State) UnmarshalJSON(data []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var result float64
	if raw.Result != "" {
		var err error
		result, err = strconv.ParseFloat(raw.Result, 64)
		if err != nil {
			return fmt.Errorf("decoding result %q: %w", raw.Result, err)
		}
	}

	*s = State{
		Display:         raw.Display,
		Result:          result,
		Operation:       raw.Operation,
		IsNewInput:      raw.IsNewInput,
		CombinedDisplay: raw.CombinedDisplay,
	}
	return nil
}

// FormatNumber renders v the way the display shows numbers: plain decimal
// notation below 1e21, exponent notation above, and +Inf, -Inf or NaN for
// non-finite values.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case math.Abs(v) < 1e21:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}

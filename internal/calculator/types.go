package calculator

import "math"

// PressRequest is the JSON body for POST /calculator/press.
type PressRequest struct {
	Button string `json:"button"`
}

// SequenceRequest is the JSON body for POST /calculator/sequence.
type SequenceRequest struct {
	Buttons []string `json:"buttons"`
}

// EvaluateRequest is the JSON body for POST /calculator/evaluate.
type EvaluateRequest struct {
	Expression string `json:"expression"`
}

// StateResponse is the JSON rendering of a calculator state. Result is null
// when it is not finite; ResultText always carries the display form.
type StateResponse struct {
	Display         string   `json:"display"`
	CombinedDisplay string   `json:"combined_display"`
	Result          *float64 `json:"result"`
	ResultText      string   `json:"result_text"`
	Operation       string   `json:"operation"`
	IsNewInput      bool     `json:"is_new_input"`
}

// SequenceStep records the displays after one button of a sequence.
type SequenceStep struct {
	Button          string `json:"button"`
	Display         string `json:"display"`
	CombinedDisplay string `json:"combined_display"`
}

// SequenceResponse is the JSON response for POST /calculator/sequence.
type SequenceResponse struct {
	Steps []SequenceStep `json:"steps"`
	State StateResponse  `json:"state"`
}

// EvaluateResponse is the JSON response for POST /calculator/evaluate.
type EvaluateResponse struct {
	Expression string   `json:"expression"`
	Result     *float64 `json:"result"`
	ResultText string   `json:"result_text"`
}

func NewStateResponse(s State) StateResponse {
	return StateResponse{
		Display:         s.Display,
		CombinedDisplay: s.CombinedDisplay,
		Result:          finite(s.Result),
		ResultText:      FormatNumber(s.Result),
		Operation:       string(s.Operation),
		IsNewInput:      s.IsNewInput,
	}
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

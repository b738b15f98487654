package calculator

import (
	"errors"
	"fmt"
)

var ErrUnknownButton = errors.New("calculator: unknown button")

// TransitionError reports a failure while applying a button that is not an
// evaluator rejection. The state is left as it was when the failure happened.
type TransitionError struct {
	Button string
	Err    error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("calculator: button %q: %v", e.Button, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// DisplayText is what the display shows after the failure.
func (e *TransitionError) DisplayText() string {
	return "Error: " + e.Err.Error()
}

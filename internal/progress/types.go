// Package progress shows step-by-step progress for long running commands.
// Steps render as a spinner on a terminal and as plain lines otherwise, and
// finish with a success or failure mark.
package progress

import apperrors "github.com/pepkit/eido/internal/errors"

// StepStatus represents the execution state of a step
type StepStatus int

const (
	// StepPending indicates the step has not started yet
	StepPending StepStatus = iota
	// StepRunning indicates the step is in progress
	StepRunning
	// StepDone indicates the step finished successfully
	StepDone
	// StepFailed indicates the step returned an error
	StepFailed
)

// String returns the string representation of StepStatus
func (s StepStatus) String() string {
	switch s {
	case StepPending:
		return "pending"
	case StepRunning:
		return "running"
	case StepDone:
		return "done"
	case StepFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Step describes one unit of work shown by a Display, e.g. "reading schema".
type Step struct {
	// Name is the human-readable step name
	Name string
	// Number is the 1-based position of the step
	Number int
	// Total is the number of steps in the command
	Total int
	// Status is the current execution status
	Status StepStatus
}

// Validate checks that the step can be displayed.
func (s Step) Validate() error {
	if s.Name == "" {
		return apperrors.NewArgumentError("step name cannot be empty")
	}
	if s.Number <= 0 {
		return apperrors.NewArgumentError("step number must be > 0")
	}
	if s.Total <= 0 {
		return apperrors.NewArgumentError("total steps must be > 0")
	}
	if s.Number > s.Total {
		return apperrors.NewArgumentError("step number cannot exceed total steps")
	}
	return nil
}

// Steps numbers the given names as one sequence.
func Steps(names ...string) []Step {
	out := make([]Step, len(names))
	for i, n := range names {
		out[i] = Step{Name: n, Number: i + 1, Total: len(names)}
	}
	return out
}

// TerminalCapabilities encapsulates detected terminal features
type TerminalCapabilities struct {
	// IsTTY indicates whether the output is a terminal (vs pipe/redirect)
	IsTTY bool
	// SupportsColor indicates whether terminal supports ANSI color codes
	SupportsColor bool
	// SupportsUnicode indicates whether terminal supports Unicode characters
	SupportsUnicode bool
	// Width is the terminal width in columns (0 if unknown/pipe)
	Width int
}

// Symbols defines the character set for visual indicators
type Symbols struct {
	Checkmark string
	Failure   string
	// SpinnerSet is the index into spinner.CharSets
	SpinnerSet int
}

package cli

import (
	"errors"
	"fmt"

	clierrors "github.com/pepkit/eido/internal/errors"
)

// Exit codes for the eido CLI.
// These codes support programmatic composition and CI/CD integration
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0
	// ExitValidationFailed indicates the project does not satisfy the schema
	ExitValidationFailed = 1
	// ExitInvalidArguments indicates invalid command arguments or configuration
	ExitInvalidArguments = 3
	// ExitMissingPrerequisite indicates a project, table or schema could not be read
	ExitMissingPrerequisite = 4
	// ExitRuntimeError indicates any other failure
	ExitRuntimeError = 5
)

// exitError carries an exit code for failures that were already reported.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// NewExitError creates a new exit error with the given code.
func NewExitError(code int) error {
	return &exitError{code: code}
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		switch cliErr.Category {
		case clierrors.Validation:
			return ExitValidationFailed
		case clierrors.Argument, clierrors.Configuration:
			return ExitInvalidArguments
		case clierrors.Prerequisite:
			return ExitMissingPrerequisite
		}
	}
	return ExitRuntimeError
}

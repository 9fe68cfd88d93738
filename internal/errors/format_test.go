// Package errors_test tests CLI error formatting with and without colors, and error output utilities.
// Related: internal/errors/format.go
// Tags: errors, formatting, colors, output, plain-text
package errors

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatErrorPlain(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err     error
		want    []string
		notWant []string
	}{
		"nil error": {err: nil},
		"basic": {
			err:     &CLIError{Category: Argument, Message: "test message"},
			want:    []string{"Argument Error: test message"},
			notWant: []string{"Usage:", "To fix this:"},
		},
		"with usage": {
			err:  &CLIError{Category: Argument, Message: "missing arg", Usage: "eido validate <pep>"},
			want: []string{"Usage:", "eido validate <pep>"},
		},
		"with remediation": {
			err:  &CLIError{Category: Configuration, Message: "config error", Remediation: []string{"step 1", "step 2"}},
			want: []string{"Configuration Error", "To fix this:", "1. step 1", "2. step 2"},
		},
		"plain error is runtime": {
			err:  errors.New("boom"),
			want: []string{"Runtime Error: boom"},
		},
	}

	for name, tc := range tests {

		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := FormatErrorPlain(tc.err)
			if tc.err == nil {
				assert.Empty(t, got)
				return
			}
			for _, w := range tc.want {
				assert.Contains(t, got, w)
			}
			for _, w := range tc.notWant {
				assert.NotContains(t, got, w)
			}
			assert.NotContains(t, got, "\x1b[")
		})
	}
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	got := FormatError(&CLIError{Category: Validation, Message: "missing properties: 'samples'"})

	assert.Contains(t, got, "Validation Error")
	assert.Contains(t, got, "missing properties: 'samples'")
	assert.Empty(t, FormatError(nil))
}

func TestFprintError(t *testing.T) {
	t.Parallel()

	t.Run("nil error does nothing", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		FprintError(&buf, nil)
		assert.Zero(t, buf.Len())
	})

	t.Run("writes error to buffer", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		FprintError(&buf, &CLIError{Category: Prerequisite, Message: "missing file"})
		assert.Contains(t, buf.String(), "missing file")
	})
}

func TestFormatSimpleError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, FormatSimpleError(nil, Runtime))
	got := FormatSimpleError(errors.New("schema unreachable"), Prerequisite)
	assert.Contains(t, got, "Prerequisite Error")
	assert.Contains(t, got, "schema unreachable")
}

func TestPrintError(t *testing.T) {
	// writes to stderr; only checks it does not panic
	PrintError(&CLIError{Category: Runtime, Message: "test"})
	PrintError(nil)
}

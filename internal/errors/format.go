package errors

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	categoryColor    = color.New(color.FgRed, color.Bold)
	usageColor       = color.New(color.FgCyan)
	remediationColor = color.New(color.FgYellow)
)

// FormatError renders err with colors for a terminal. Non-CLI errors are
// shown as Runtime errors.
func FormatError(err error) string {
	return format(err, Runtime, true)
}

// FormatErrorPlain renders err without ANSI codes.
func FormatErrorPlain(err error) string {
	return format(err, Runtime, false)
}

// FormatSimpleError renders a plain error under the given category.
func FormatSimpleError(err error, category ErrorCategory) string {
	return format(err, category, !color.NoColor)
}

func format(err error, fallback ErrorCategory, colored bool) string {
	if err == nil {
		return ""
	}
	cliErr := AsCLIError(err)
	if cliErr == nil {
		cliErr = &CLIError{Category: fallback, Message: err.Error()}
	}

	paint := func(c *color.Color, s string) string {
		if !colored {
			return s
		}
		return c.Sprint(s)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", paint(categoryColor, cliErr.Category.String()), cliErr.Message)
	if cliErr.Usage != "" {
		fmt.Fprintf(&sb, "\n%s\n  %s\n", paint(usageColor, "Usage:"), cliErr.Usage)
	}
	if len(cliErr.Remediation) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", paint(remediationColor, "To fix this:"))
		for i, step := range cliErr.Remediation {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, step)
		}
	}
	return sb.String()
}

// PrintError writes err to stderr.
func PrintError(err error) {
	FprintError(os.Stderr, err)
}

// FprintError writes err to w, colored when colors are enabled.
func FprintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprint(w, format(err, Runtime, !color.NoColor))
}

package progress

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

func formatCounter(number, total int) string {
	return fmt.Sprintf("[%d/%d]", number, total)
}

// stepMessage renders "[2/3] Reading schema".
func stepMessage(step Step) string {
	return fmt.Sprintf("%s %s", formatCounter(step.Number, step.Total), capitalize(step.Name))
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func mark(symbol string, colorize bool, attr color.Attribute) string {
	if !colorize {
		return symbol
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(symbol)
}

func checkmark(symbols Symbols, supportsColor bool) string {
	return mark(symbols.Checkmark, supportsColor, color.FgGreen)
}

func failureMark(symbols Symbols, supportsColor bool) string {
	return mark(symbols.Failure, supportsColor, color.FgRed)
}

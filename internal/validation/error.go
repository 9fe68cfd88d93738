package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrNoSampleSchema is returned when no schema document describes samples.
var ErrNoSampleSchema = errors.New("schema has no _samples.items definition")

// ValidationError is a structural mismatch between an instance and a schema
// document.
type ValidationError struct {
	Message      string // Human-readable description of the failing keyword
	InstancePath string // JSON pointer to the offending value, "" for the root
	SchemaPath   string // JSON pointer to the failing keyword in the schema
	Instance     any    // The offending value
	Reduced      bool   // Only Message is reported

	cause *jsonschema.ValidationError
}

// Error implements the error interface. A reduced error is just the message.
func (e *ValidationError) Error() string {
	if e.Reduced {
		return e.Message
	}
	var sb strings.Builder
	sb.WriteString(e.Message)
	fmt.Fprintf(&sb, "\n\nFailed validating %s in schema:\n    %s", keyword(e.SchemaPath), displayPath(e.SchemaPath))
	fmt.Fprintf(&sb, "\n\nOn instance%s:\n    %s", instanceSuffix(e.InstancePath), renderInstance(e.Instance))
	return sb.String()
}

// Unwrap exposes the validator's native error for full errors.
func (e *ValidationError) Unwrap() error {
	if e.cause == nil {
		return nil
	}
	return e.cause
}

// FormatFull returns a detailed multi-line description.
func (e *ValidationError) FormatFull() string {
	var sb strings.Builder

	if !e.Reduced {
		fmt.Fprintf(&sb, "  Path: %s\n", displayPath(e.InstancePath))
		fmt.Fprintf(&sb, "  Schema: %s\n", displayPath(e.SchemaPath))
	}
	fmt.Fprintf(&sb, "  Error: %s\n", e.Message)
	if !e.Reduced && e.Instance != nil {
		fmt.Fprintf(&sb, "  Got: %s\n", truncate(renderInstance(e.Instance), 200))
	}
	return sb.String()
}

// reduce drops everything but the message.
func (e *ValidationError) reduce() *ValidationError {
	return &ValidationError{Message: e.Message, Reduced: true}
}

// newValidationError picks the most specific failure out of the validator's
// error tree.
func newValidationError(ve *jsonschema.ValidationError, instance any) *ValidationError {
	leaf := ve
	for {
		if isAlternative(leaf.KeywordLocation) || len(leaf.Causes) == 0 {
			break
		}
		leaf = leaf.Causes[0]
	}

	value, _ := lookup(instance, leaf.InstanceLocation)
	msg := leaf.Message
	if isAlternative(leaf.KeywordLocation) {
		msg = fmt.Sprintf("%s is not valid under any of the given schemas", renderInstance(value))
	}
	return &ValidationError{
		Message:      msg,
		InstancePath: leaf.InstanceLocation,
		SchemaPath:   leaf.KeywordLocation,
		Instance:     value,
		cause:        ve,
	}
}

func isAlternative(keywordLocation string) bool {
	switch keyword(keywordLocation) {
	case "anyOf", "oneOf":
		return true
	}
	return false
}

func keyword(pointer string) string {
	if i := strings.LastIndexByte(pointer, '/'); i >= 0 {
		return pointer[i+1:]
	}
	return pointer
}

// lookup resolves a JSON pointer against a normalized instance.
func lookup(v any, pointer string) (any, bool) {
	if pointer == "" {
		return v, true
	}
	for _, tok := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		tok = strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")
		switch t := v.(type) {
		case map[string]any:
			next, ok := t[tok]
			if !ok {
				return nil, false
			}
			v = next
		case []any:
			var i int
			if _, err := fmt.Sscanf(tok, "%d", &i); err != nil || i < 0 || i >= len(t) {
				return nil, false
			}
			v = t[i]
		default:
			return nil, false
		}
	}
	return v, true
}

func displayPath(pointer string) string {
	if pointer == "" {
		return "/"
	}
	return pointer
}

func instanceSuffix(pointer string) string {
	if pointer == "" {
		return ""
	}
	return " " + pointer
}

func renderInstance(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

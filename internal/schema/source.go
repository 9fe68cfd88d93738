package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedSource is matched by every SourceTypeError.
var ErrUnsupportedSource = errors.New("unsupported schema source")

// ErrImportCycle is returned when a referenced schema imports itself,
// directly or transitively.
var ErrImportCycle = errors.New("schema import cycle")

// Source identifies where a schema comes from. It is one of Ref, Inline or
// Loaded; Read resolves it to concrete documents.
type Source interface {
	isSource()
	String() string
}

// Ref is a filesystem path or an http(s) URL of a YAML or JSON schema.
type Ref string

// Inline is a schema document already held in memory.
type Inline Document

// Loaded is a list of documents that were read earlier. Read returns copies
// of them without expanding imports again.
type Loaded []Document

func (Ref) isSource()    {}
func (Inline) isSource() {}
func (Loaded) isSource() {}

func (r Ref) String() string    { return string(r) }
func (Inline) String() string   { return "<inline schema>" }
func (l Loaded) String() string { return fmt.Sprintf("<%d loaded schemas>", len(l)) }

// IsURL reports whether the reference points to a remote document.
func (r Ref) IsURL() bool {
	s := strings.ToLower(string(r))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// SourceOf converts a dynamically typed value, such as an entry of an
// "imports" list, into a Source. Strings become a Ref and mappings an Inline
// document; anything else is a SourceTypeError.
func SourceOf(v any) (Source, error) {
	switch t := v.(type) {
	case Source:
		return t, nil
	case string:
		return Ref(t), nil
	case map[string]any:
		return Inline(t), nil
	case Document:
		return Inline(t), nil
	default:
		return nil, &SourceTypeError{Value: v}
	}
}

// SourceTypeError reports a schema source that is neither a reference nor a
// mapping.
type SourceTypeError struct {
	Value any
}

func (e *SourceTypeError) Error() string {
	return fmt.Sprintf("schema has to be a mapping, a path to an existing file or a URL to a remote one, got %T", e.Value)
}

func (e *SourceTypeError) Is(target error) bool {
	return target == ErrUnsupportedSource
}

// ImportsTypeError reports an "imports" section that is not a list.
type ImportsTypeError struct {
	Document string
	Value    any
}

func (e *ImportsTypeError) Error() string {
	return fmt.Sprintf("in schema %s the 'imports' section has to be a list, got %T", e.Document, e.Value)
}

func (e *ImportsTypeError) Is(target error) bool {
	return target == ErrUnsupportedSource
}

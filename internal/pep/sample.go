package pep

import (
	"fmt"
	"strings"
)

// Sample is one record of a project. Attribute values are either a string or,
// for attributes merged from several rows, a []string.
type Sample struct {
	index string
	keys  []string
	attrs map[string]any
}

// NewSample creates an empty sample whose name is held by the index attribute.
func NewSample(index string) *Sample {
	return &Sample{index: index, attrs: make(map[string]any)}
}

// Name returns the value of the index attribute.
func (s *Sample) Name() string {
	switch v := s.attrs[s.index].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

// Keys returns attribute names in insertion order.
func (s *Sample) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Attr returns an attribute value, or nil when the sample lacks it.
func (s *Sample) Attr(name string) any {
	return s.attrs[name]
}

// Has reports whether the attribute is set.
func (s *Sample) Has(name string) bool {
	_, ok := s.attrs[name]
	return ok
}

// Set stores an attribute, replacing any previous value.
func (s *Sample) Set(name string, value any) {
	if _, ok := s.attrs[name]; !ok {
		s.keys = append(s.keys, name)
	}
	s.attrs[name] = value
}

// Delete removes an attribute.
func (s *Sample) Delete(name string) {
	if _, ok := s.attrs[name]; !ok {
		return
	}
	delete(s.attrs, name)
	for i, k := range s.keys {
		if k == name {
			s.keys = append(s.keys[:i:i], s.keys[i+1:]...)
			break
		}
	}
}

// merge adds value to an attribute, turning it into a list when it already
// holds a value.
func (s *Sample) merge(name, value string) {
	switch cur := s.attrs[name].(type) {
	case nil:
		s.Set(name, value)
	case string:
		s.attrs[name] = []string{cur, value}
	case []string:
		s.attrs[name] = append(cur, value)
	default:
		s.attrs[name] = []string{fmt.Sprint(cur), value}
	}
}

// Values returns the attribute as a list of strings: a scalar becomes a
// single entry, a list is returned as is, and a missing or empty value gives
// nil.
func (s *Sample) Values(name string) []string {
	return Flatten(s.attrs[name])
}

// ToMap returns the plain mapping form of the sample.
func (s *Sample) ToMap() map[string]any {
	out := make(map[string]any, len(s.attrs))
	for k, v := range s.attrs {
		if list, ok := v.([]string); ok {
			v = append([]string(nil), list...)
		}
		out[k] = v
	}
	return out
}

// String renders the sample with at most maxAttr attributes; maxAttr <= 0
// shows all of them.
func (s *Sample) String(maxAttr int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Sample '%s'", s.Name())
	keys := s.keys
	if maxAttr > 0 && len(keys) > maxAttr {
		keys = keys[:maxAttr]
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "\n  %s: %s", k, formatValue(s.attrs[k]))
	}
	if hidden := len(s.keys) - len(keys); hidden > 0 {
		fmt.Fprintf(&sb, "\n  ...(%d more attributes)", hidden)
	}
	return sb.String()
}

func formatValue(v any) string {
	if list, ok := v.([]string); ok {
		return "[" + strings.Join(list, ", ") + "]"
	}
	return fmt.Sprint(v)
}

// Flatten turns an attribute value into its non-empty string entries,
// flattening one level of nesting.
func Flatten(v any) []string {
	var out []string
	add := func(x any) {
		switch t := x.(type) {
		case nil:
		case string:
			if t != "" {
				out = append(out, t)
			}
		default:
			out = append(out, fmt.Sprint(t))
		}
	}
	switch t := v.(type) {
	case []string:
		for _, x := range t {
			add(x)
		}
	case []any:
		for _, x := range t {
			add(x)
		}
	default:
		add(t)
	}
	return out
}

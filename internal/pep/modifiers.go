package pep

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/pepkit/eido/internal/yamlvalue"
)

// Sample modifier sections.
const (
	ModRemove    = "remove"
	ModAppend    = "append"
	ModDuplicate = "duplicate"
	ModImply     = "imply"
	ModDerive    = "derive"
)

var placeholder = regexp.MustCompile(`\{(\w+)\}`)

// modifiers holds the parsed sample_modifiers section.
type modifiers struct {
	remove    []string
	appendix  [][2]string
	duplicate [][2]string
	imply     []implication
	derive    derivation
}

type implication struct {
	when map[string][]string
	then [][2]string
}

type derivation struct {
	attributes []string
	sources    map[string]string
}

func parseModifiers(config map[string]any) (*modifiers, error) {
	mods := &modifiers{}
	raw, ok := config[KeySampleModifiers]
	if !ok || raw == nil {
		return mods, nil
	}
	section, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a mapping, got %T", KeySampleModifiers, raw)
	}

	mods.remove = stringList(section[ModRemove])
	mods.appendix = sortedPairs(section[ModAppend])
	mods.duplicate = sortedPairs(section[ModDuplicate])

	if rawImply, ok := section[ModImply]; ok {
		rules, ok := rawImply.([]any)
		if !ok {
			return nil, fmt.Errorf("%s.%s must be a list", KeySampleModifiers, ModImply)
		}
		for i, r := range rules {
			rule, _ := r.(map[string]any)
			cond, _ := rule["if"].(map[string]any)
			if len(cond) == 0 {
				return nil, fmt.Errorf("%s.%s[%d] needs an 'if' mapping", KeySampleModifiers, ModImply, i)
			}
			imp := implication{when: make(map[string][]string, len(cond)), then: sortedPairs(rule["then"])}
			for k, v := range cond {
				imp.when[k] = stringList(v)
			}
			mods.imply = append(mods.imply, imp)
		}
	}

	if rawDerive, ok := section[ModDerive].(map[string]any); ok {
		mods.derive.attributes = stringList(rawDerive["attributes"])
		mods.derive.sources = make(map[string]string)
		for _, kv := range sortedPairs(rawDerive["sources"]) {
			mods.derive.sources[kv[0]] = kv[1]
		}
	}
	return mods, nil
}

// beforeMerge applies the modifiers that run before subsample tables are
// merged.
func (m *modifiers) beforeMerge(s *Sample) {
	for _, attr := range m.remove {
		s.Delete(attr)
	}
	for _, kv := range m.appendix {
		s.Set(kv[0], kv[1])
	}
	for _, kv := range m.duplicate {
		if v := s.Attr(kv[0]); v != nil {
			s.Set(kv[1], yamlvalue.Clone(v))
		}
	}
	for _, imp := range m.imply {
		if imp.matches(s) {
			for _, kv := range imp.then {
				s.Set(kv[0], kv[1])
			}
		}
	}
}

// afterMerge derives attributes from source templates.
func (m *modifiers) afterMerge(s *Sample) {
	for _, attr := range m.derive.attributes {
		switch v := s.Attr(attr).(type) {
		case string:
			s.Set(attr, m.derive.resolve(v, s))
		case []string:
			out := make([]string, len(v))
			for i := range v {
				out[i] = m.derive.resolve(v[i], s)
			}
			s.Set(attr, out)
		}
	}
}

func (imp implication) matches(s *Sample) bool {
	for attr, accepted := range imp.when {
		val, ok := s.Attr(attr).(string)
		if !ok || !slices.Contains(accepted, val) {
			return false
		}
	}
	return true
}

// resolve replaces a source key with its template, filling {attr}
// placeholders from the sample and expanding environment variables.
func (d derivation) resolve(key string, s *Sample) string {
	tmpl, ok := d.sources[key]
	if !ok {
		return key
	}
	out := placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := s.Attr(name).(string); ok {
			return v
		}
		return m
	})
	return os.ExpandEnv(out)
}

func stringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, x := range t {
			out = append(out, fmt.Sprint(x))
		}
		return out
	case []string:
		return t
	default:
		return []string{fmt.Sprint(t)}
	}
}

// sortedPairs flattens a mapping into key/value pairs ordered by key so
// modifiers apply deterministically.
func sortedPairs(v any) [][2]string {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([][2]string, 0, len(m))
	for _, k := range keys {
		out = append(out, [2]string{k, strings.TrimSpace(fmt.Sprint(m[k]))})
	}
	return out
}

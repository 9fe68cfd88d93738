// Package yamlvalue_test tests normalization and deep copies of decoded YAML values.
// Related: internal/yamlvalue/yamlvalue.go
// Tags: yaml, clone, normalize
package yamlvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	in := map[any]any{
		"name": "frog",
		1:      []any{map[any]any{"nested": true}},
	}
	assert.Equal(t, map[string]any{
		"name": "frog",
		"1":    []any{map[string]any{"nested": true}},
	}, Normalize(in))
}

func TestNormalize_DecodedYAML(t *testing.T) {
	t.Parallel()

	var raw any
	assert.NoError(t, yaml.Unmarshal([]byte("a:\n  200: ok\n"), &raw))
	assert.Equal(t, map[string]any{"a": map[string]any{"200": "ok"}}, Normalize(raw))
}

func TestClone(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		value  any
		mutate func(v any)
		want   any
	}{
		"nested map": {
			value:  map[string]any{"a": map[string]any{"b": "c"}},
			mutate: func(v any) { v.(map[string]any)["a"].(map[string]any)["b"] = "x" },
			want:   map[string]any{"a": map[string]any{"b": "c"}},
		},
		"list of any": {
			value:  []any{"a", []any{"b"}},
			mutate: func(v any) { v.([]any)[1].([]any)[0] = "x" },
			want:   []any{"a", []any{"b"}},
		},
		"string list": {
			value:  []string{"a", "b"},
			mutate: func(v any) { v.([]string)[0] = "x" },
			want:   []string{"a", "b"},
		},
		"scalar": {
			value:  "a",
			mutate: func(any) {},
			want:   "a",
		},
	}

	for name, tc := range tests {

		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			clone := Clone(tc.value)
			tc.mutate(tc.value)
			assert.Equal(t, tc.want, clone)
		})
	}
}

func TestCloneMap_Nil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CloneMap(nil))
}

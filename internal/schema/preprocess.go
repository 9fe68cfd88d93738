package schema

// widenedTypes are the scalar types a sample attribute may also carry as a
// list, since merged subsample rows produce repeated values for one field.
var widenedTypes = map[string]bool{
	"string":  true,
	"number":  true,
	"boolean": true,
}

// Preprocess rewrites doc in place so it applies to the project mapping, and
// returns it:
//
//   - properties.config is moved to properties._config
//   - properties.samples is moved to properties._samples, and a "samples"
//     entry of required is replaced at the same position
//   - every string, number or boolean property of the moved sample item
//     schema is widened to anyOf [itself, array of itself]
//
// A document that already uses _samples is left as written.
//
// Widening is not idempotent. Each document must be preprocessed once;
// callers that still need the original must Clone it first.
func Preprocess(doc Document) Document {
	props := doc.Properties()
	if props == nil {
		return doc
	}
	if cfg, ok := props[SectionConfig]; ok {
		props[InternalSectionConfig] = cfg
		delete(props, SectionConfig)
	}
	if samples, ok := props[SectionSamples]; ok {
		props[InternalSectionSamples] = samples
		delete(props, SectionSamples)
		renameRequired(doc, SectionSamples, InternalSectionSamples)
		widenSampleProperties(doc)
	}
	return doc
}

func renameRequired(doc Document, from, to string) {
	switch req := doc[KeyRequired].(type) {
	case []any:
		for i, name := range req {
			if name == from {
				req[i] = to
				return
			}
		}
	case []string:
		for i, name := range req {
			if name == from {
				req[i] = to
				return
			}
		}
	}
}

func widenSampleProperties(doc Document) {
	props, ok := doc.SampleItems()[KeyProperties].(map[string]any)
	if !ok {
		return
	}
	for name, raw := range props {
		prop, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if t, _ := prop[KeyType].(string); !widenedTypes[t] {
			continue
		}
		props[name] = map[string]any{
			KeyAnyOf: []any{
				prop,
				map[string]any{KeyType: "array", KeyItems: prop},
			},
		}
	}
}

// RemoveSamples drops the internal samples section and its required entry
// from a preprocessed document. Both are optional. An emptied required list
// is removed altogether.
func RemoveSamples(doc Document) Document {
	if props := doc.Properties(); props != nil {
		delete(props, InternalSectionSamples)
	}
	var remaining int
	switch req := doc[KeyRequired].(type) {
	case []any:
		req = removeFirst(req, InternalSectionSamples)
		doc[KeyRequired], remaining = req, len(req)
	case []string:
		for i, name := range req {
			if name == InternalSectionSamples {
				req = append(req[:i:i], req[i+1:]...)
				break
			}
		}
		doc[KeyRequired], remaining = req, len(req)
	default:
		return doc
	}
	if remaining == 0 {
		delete(doc, KeyRequired)
	}
	return doc
}

func removeFirst(list []any, value string) []any {
	for i, v := range list {
		if v == value {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

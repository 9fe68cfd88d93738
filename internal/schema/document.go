// Package schema reads PEP schema documents and rewrites them so they can be
// applied to the in-memory project representation.
//
// A schema document is an ordinary JSON-Schema object schema plus three
// extension keywords: "imports" at the top level (other schema sources that
// are checked alongside this one), and "files" / "required_files" inside the
// sample item schema (names of sample attributes that hold input paths).
package schema

import "github.com/pepkit/eido/internal/yamlvalue"

// Recognized schema keywords.
const (
	KeyProperties    = "properties"
	KeyRequired      = "required"
	KeyImports       = "imports"
	KeyItems         = "items"
	KeyType          = "type"
	KeyAnyOf         = "anyOf"
	KeyFiles         = "files"
	KeyRequiredFiles = "required_files"
)

// Public section names used by schema authors and their internal counterparts
// in the project mapping.
const (
	SectionSamples         = "samples"
	SectionConfig          = "config"
	InternalSectionSamples = "_samples"
	InternalSectionConfig  = "_config"
)

// Document is a single schema document.
type Document map[string]any

// Properties returns the "properties" mapping, or nil when absent or malformed.
func (d Document) Properties() map[string]any {
	props, _ := d[KeyProperties].(map[string]any)
	return props
}

// SampleItems returns the item schema of the internal samples section of a
// preprocessed document, or nil when the document does not describe samples.
func (d Document) SampleItems() map[string]any {
	samples, _ := d.Properties()[InternalSectionSamples].(map[string]any)
	items, _ := samples[KeyItems].(map[string]any)
	return items
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return Document(yamlvalue.CloneMap(d))
}

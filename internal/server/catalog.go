package server

import "github.com/pepkit/eido/internal/schema"

// Catalog maps short names to well known remote schemas. A validate request
// may name one of them instead of giving a path or URL.
var Catalog = map[string]schema.Ref{
	"pep-2.0.0": "http://schema.databio.org/pep/2.0.0.yaml",
	"peppro":    "http://schema.databio.org/pipelines/ProseqPEP.yaml",
	"pepatac":   "http://schema.databio.org/pipelines/pepatac.yaml",
	"bedmaker":  "http://schema.databio.org/pipelines/bedmaker.yaml",
	"refgenie":  "http://schema.databio.org/refgenie/refgenie_build.yaml",
	"bulker":    "http://schema.databio.org/bulker/manifest.yaml",
}

func resolveSchemaName(name string) schema.Ref {
	if ref, ok := Catalog[name]; ok {
		return ref
	}
	return schema.Ref(name)
}

package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pepkit/eido/internal/schema"
)

// schemaURL is the resource name a document is compiled under. Relative
// $refs inside the document resolve against it.
const schemaURL = "file:///eido/schema.json"

// urlLoader opens the document a $ref points to.
type urlLoader func(url string) (io.ReadCloser, error)

// compile turns a schema document into a validator. Every $ref outside the
// document is opened with load; the compiler's own file and HTTP loaders are
// never used. A load failure is returned wrapped, so callers can match it
// with errors.Is.
func compile(doc map[string]any, load urlLoader) (*jsonschema.Schema, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	var loadErr error
	c.LoadURL = func(url string) (io.ReadCloser, error) {
		rc, err := load(url)
		if err != nil && loadErr == nil {
			loadErr = err
		}
		return rc, err
	}
	if err := c.AddResource(schemaURL, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	sch, err := c.Compile(schemaURL)
	if err != nil {
		if loadErr != nil {
			return nil, fmt.Errorf("compiling schema: %w", loadErr)
		}
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return sch, nil
}

// validateObject checks instance against doc. Structural mismatches come
// back as *ValidationError, reduced to the message when excludeCase is set.
func validateObject(instance any, doc schema.Document, load urlLoader, excludeCase bool) error {
	sch, err := compile(doc, load)
	if err != nil {
		return err
	}
	v, err := normalizeInstance(instance)
	if err != nil {
		return err
	}

	err = sch.Validate(v)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("validating: %w", err)
	}
	verr := newValidationError(ve, v)
	if excludeCase {
		return verr.reduce()
	}
	return verr
}

// normalizeInstance converts an arbitrary Go value into the JSON value types
// the validator accepts.
func normalizeInstance(instance any) (any, error) {
	data, err := json.Marshal(instance)
	if err != nil {
		return nil, fmt.Errorf("encoding instance: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decoding instance: %w", err)
	}
	return v, nil
}

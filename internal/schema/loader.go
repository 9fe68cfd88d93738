package schema

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Loader reads schema sources and expands their imports.
type Loader struct {
	fetcher Fetcher
	log     *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFetcher replaces the default file/HTTP fetcher.
func WithFetcher(f Fetcher) LoaderOption {
	return func(l *Loader) { l.fetcher = f }
}

// WithLogger sets the logger used for debug output.
func WithLogger(log *zap.Logger) LoaderOption {
	return func(l *Loader) { l.log = log }
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{fetcher: NewFetcher(), log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Read reads a schema with a default Loader.
func Read(src Source) ([]Document, error) {
	return NewLoader().Read(src)
}

// Read resolves src into a flat list of documents. Every import is expanded
// depth-first, left to right, and is followed by the document that declared
// it, so a document with N imports contributes its imports' expansions and
// then itself.
//
// The returned documents are never shared with the caller: inline sources are
// deep-copied, so they can be preprocessed freely.
func (l *Loader) Read(src Source) ([]Document, error) {
	return l.read(src, nil)
}

// Open fetches the document url names through the loader's fetcher and
// returns it encoded as JSON. Its imports are not expanded. It resolves the
// $refs of a schema while it is compiled, so they obey the same fetcher
// rules as imports.
func (l *Loader) Open(url string) (io.ReadCloser, error) {
	l.log.Debug("resolving schema reference", zap.String("url", url))
	doc, err := l.fetcher.Fetch(Ref(url))
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding schema %s: %w", url, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (l *Loader) read(src Source, refs []Ref) ([]Document, error) {
	switch s := src.(type) {
	case Ref:
		for _, seen := range refs {
			if seen == s {
				return nil, fmt.Errorf("%w: %s", ErrImportCycle, s)
			}
		}
		l.log.Debug("reading schema", zap.String("source", string(s)))
		doc, err := l.fetcher.Fetch(s)
		if err != nil {
			return nil, err
		}
		return l.expand(doc, s.String(), append(refs, s))
	case Inline:
		if s == nil {
			return nil, &SourceTypeError{Value: s}
		}
		return l.expand(Document(s).Clone(), s.String(), refs)
	case Loaded:
		out := make([]Document, len(s))
		for i, doc := range s {
			out[i] = doc.Clone()
		}
		return out, nil
	default:
		return nil, &SourceTypeError{Value: src}
	}
}

func (l *Loader) expand(doc Document, name string, refs []Ref) ([]Document, error) {
	var docs []Document
	if raw, ok := doc[KeyImports]; ok {
		imports, ok := importList(raw)
		if !ok {
			return nil, &ImportsTypeError{Document: name, Value: raw}
		}
		for i, entry := range imports {
			src, err := SourceOf(entry)
			if err != nil {
				return nil, fmt.Errorf("import %d of schema %s: %w", i, name, err)
			}
			imported, err := l.read(src, refs)
			if err != nil {
				return nil, err
			}
			docs = append(docs, imported...)
		}
	}
	return append(docs, doc), nil
}

func importList(raw any) ([]any, bool) {
	switch t := raw.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, true
	default:
		return nil, false
	}
}

package schema

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/pepkit/eido/internal/retry"
	"github.com/pepkit/eido/internal/yamlvalue"
)

// Fetcher turns a reference into a parsed document.
type Fetcher interface {
	Fetch(ref Ref) (Document, error)
}

// DefaultFetcher reads local files through Fs and remote ones with Client.
// Both are parsed as YAML, which also accepts JSON. When Retry allows it,
// remote reads that fail with a network error or a 5xx status are retried;
// by default nothing is.
type DefaultFetcher struct {
	Fs     afero.Fs
	Client *http.Client
	Retry  retry.Policy
}

// NewFetcher returns a fetcher backed by the OS filesystem and the default
// HTTP client. It does not retry.
func NewFetcher() *DefaultFetcher {
	return &DefaultFetcher{Fs: afero.NewOsFs(), Client: http.DefaultClient, Retry: retry.DefaultPolicy()}
}

// Fetch reads and parses the referenced document.
func (f *DefaultFetcher) Fetch(ref Ref) (Document, error) {
	var (
		data []byte
		err  error
	)
	if ref.IsURL() {
		data, err = f.fetchURL(string(ref))
	} else {
		data, err = f.readFile(strings.TrimPrefix(string(ref), "file://"))
	}
	if err != nil {
		return nil, err
	}
	return ParseYAML(data, string(ref))
}

func (f *DefaultFetcher) readFile(path string) ([]byte, error) {
	fs := f.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading schema %s: %w", path, err)
	}
	return data, nil
}

func (f *DefaultFetcher) fetchURL(url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	var data []byte
	err := retry.Do(context.Background(), f.Retry, "fetching schema "+url, func() error {
		resp, err := client.Get(url)
		if err != nil {
			return fmt.Errorf("fetching schema %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("fetching schema %s: unexpected status %s", url, resp.Status)
			if resp.StatusCode < http.StatusInternalServerError {
				return retry.Permanent(err)
			}
			return err
		}
		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading schema %s: %w", url, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ParseYAML parses a YAML (or JSON) schema document. name is only used in
// error messages.
func ParseYAML(data []byte, name string) (Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing schema %s: %w", name, err)
	}
	m, ok := yamlvalue.Normalize(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parsing schema %s: top level is %T, not a mapping", name, raw)
	}
	return Document(m), nil
}

package conversion

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// Save writes each result to the path registered for its name, or to w when
// there is none.
func Save(results, paths map[string]string, w io.Writer) error {
	return SaveFs(afero.NewOsFs(), results, paths, w)
}

// SaveFs is Save on an arbitrary filesystem.
func SaveFs(fs afero.Fs, results, paths map[string]string, w io.Writer) error {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path, ok := paths[name]
		if !ok || path == "" {
			if _, err := io.WriteString(w, results[name]); err != nil {
				return err
			}
			continue
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := fs.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("creating directory for %s: %w", name, err)
			}
		}
		if err := afero.WriteFile(fs, path, []byte(results[name]), 0644); err != nil {
			return fmt.Errorf("saving %s: %w", name, err)
		}
	}
	return nil
}

// Package inspection prints human-readable views of projects and samples.
package inspection

import (
	"fmt"
	"io"

	"github.com/pepkit/eido/internal/pep"
)

// DefaultAttrLimit is the number of sample attributes shown by default.
const DefaultAttrLimit = 10

// Inspect writes the project summary to w, or, when names are given, the
// matching samples with at most maxAttr attributes each.
func Inspect(w io.Writer, p *pep.Project, names []string, maxAttr int) error {
	if len(names) == 0 {
		_, err := fmt.Fprintln(w, p.String())
		return err
	}
	samples := p.GetSamples(names)
	if len(samples) == 0 {
		_, err := fmt.Fprintf(w, "No samples matched by names: %v\n", names)
		return err
	}
	for _, s := range samples {
		if _, err := fmt.Fprintf(w, "%s\n\n\n", s.String(maxAttr)); err != nil {
			return err
		}
	}
	return nil
}

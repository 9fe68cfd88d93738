// Package build_test tests build information reporting.
// Related: internal/build/version.go
// Tags: build, version
package build

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrent(t *testing.T) {
	t.Parallel()

	info := Current()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, Commit, info.Commit)
	assert.Equal(t, BuildDate, info.BuildDate)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}

func TestIsDevBuild(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Version == "dev", IsDevBuild())
}

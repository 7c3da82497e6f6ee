package app

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"variant-packager/internal/core"
)

var fixedClock = func() time.Time {
	return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
}

// writeSourceArchive writes a gzip-compressed sdist of jaraco.classes with
// two identical license copies, so dedup has something to link.
func writeSourceArchive(t *testing.T, dir string) string {
	t.Helper()
	files := map[string]string{
		"jaraco.classes-3.2.2/LICENSE":                         "MIT License\n",
		"jaraco.classes-3.2.2/jaraco/classes/__init__.py":      "",
		"jaraco.classes-3.2.2/jaraco/classes/properties.py":    "class NonDataProperty:\n    pass\n",
		"jaraco.classes-3.2.2/jaraco/classes/meta.py":          "class LeafClassesMeta(type):\n    pass\n",
		"jaraco.classes-3.2.2/jaraco/classes/LICENSE.vendored": "MIT License\n",
	}
	var raw bytes.Buffer
	tw := tar.NewWriter(&raw)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "jaraco.classes-3.2.2/", Typeflag: tar.TypeDir, Mode: 0o755}))
	for name, body := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(body))}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())

	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	_, err := gz.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	path := filepath.Join(dir, "jaraco.classes-3.2.2.tar.gz")
	require.NoError(t, os.WriteFile(path, compressed.Bytes(), 0o644))
	return path
}

func writeRecipe(t *testing.T, dir string, archive string) string {
	t.Helper()
	content := fmt.Sprintf(`api_version: %s
package:
  name: jaraco.classes
  epoch: 100
  version: 3.2.2
  release: "1"
license: MIT
dependencies:
  - name: more-itertools
source:
  archive: %s
  license_file: LICENSE
`, core.RecipeAPIVersion, filepath.Base(archive))
	path := filepath.Join(dir, "recipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// shellBuild copies the package into {workdir}/dist the way a wheel build
// would stage it.
var shellBuild = []string{"sh", "-c", "mkdir -p {workdir}/dist && cp -R {workdir}/jaraco {workdir}/dist/"}

// shellInstall lays the package out under the generic sitelib, including
// bytecode that finalize has to purge.
var shellInstall = []string{"sh", "-c", strings.Join([]string{
	"set -e",
	"site={root}/usr/lib/python3/site-packages",
	"mkdir -p $site/jaraco/classes/__pycache__",
	"cp -R {workdir}/dist/jaraco/classes/. $site/jaraco/classes/",
	"echo bytecode > $site/jaraco/classes/__pycache__/properties.cpython-311.pyc",
	"mkdir -p {root}/usr/share/licenses/python3-{name}",
	"cp {workdir}/LICENSE {root}/usr/share/licenses/python3-{name}/LICENSE",
}, "\n")}

type buildFixture struct {
	dir     string
	recipe  string
	service Service
	request BuildRequest
}

func newBuildFixture(t *testing.T) *buildFixture {
	t.Helper()
	dir := t.TempDir()
	archive := writeSourceArchive(t, dir)
	recipe := writeRecipe(t, dir, archive)
	service := NewService()
	service.Clock = fixedClock
	service.NewBuildID = func() string { return "00000000-0000-4000-8000-000000000001" }
	service.RPMExec = func(context.Context, string, ...string) ([]byte, error) {
		return nil, fmt.Errorf("rpm is not available in tests")
	}
	return &buildFixture{
		dir:     dir,
		recipe:  recipe,
		service: service,
		request: BuildRequest{
			RecipePath:     recipe,
			WorkDir:        filepath.Join(dir, "work"),
			StagingDir:     filepath.Join(dir, "root"),
			OutputDir:      filepath.Join(dir, "out"),
			BuildCommand:   shellBuild,
			InstallCommand: shellInstall,
			StepTimeout:    time.Minute,
		},
	}
}

// Package testutil provides shared test helpers used across integration
// and e2e tests.
package testutil

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// SourceFiles is the jaraco.classes sdist used by the fixture recipe,
// keyed by path below the archive's top-level directory.
var SourceFiles = map[string]string{
	"LICENSE":                      "MIT License\n",
	"setup.cfg":                    "[metadata]\nname = jaraco.classes\n",
	"jaraco/classes/__init__.py":   "",
	"jaraco/classes/ancestry.py":   "def all_bases(c):\n    return c.mro()[1:]\n",
	"jaraco/classes/meta.py":       "class LeafClassesMeta(type):\n    pass\n",
	"jaraco/classes/properties.py": "class NonDataProperty:\n    pass\n",
}

// StageFixture copies the fixture recipe into a fresh directory and writes
// the gzip source archive it points at. It returns the recipe path.
func StageFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	recipe, err := os.ReadFile(filepath.Join(RepoRoot(t), "fixtures", "jaraco-classes.recipe.yaml"))
	require.NoError(t, err)
	recipePath := filepath.Join(dir, "recipe.yaml")
	require.NoError(t, os.WriteFile(recipePath, recipe, 0o644))
	WriteSourceArchive(t, filepath.Join(dir, "jaraco.classes-3.2.2.tar.gz"), "jaraco.classes-3.2.2")
	return recipePath
}

// WriteSourceArchive writes SourceFiles below top as a .tar.gz at path.
func WriteSourceArchive(t *testing.T, path string, top string) {
	t.Helper()
	names := make([]string, 0, len(SourceFiles))
	for name := range SourceFiles {
		names = append(names, name)
	}
	sort.Strings(names)

	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: top + "/", Typeflag: tar.TypeDir, Mode: 0o755}))
	for _, name := range names {
		body := SourceFiles[name]
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     top + "/" + name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(body)),
		}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, compressed.Bytes(), 0o644))
}

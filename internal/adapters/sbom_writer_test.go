package adapters

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sbomDocument struct {
	SPDXVersion string `json:"spdxVersion"`
	Packages    []struct {
		Name            string `json:"name"`
		VersionInfo     string `json:"versionInfo"`
		LicenseDeclared string `json:"licenseDeclared"`
	} `json:"packages"`
	Files []struct {
		FileName  string `json:"fileName"`
		Checksums []struct {
			Algorithm     string `json:"algorithm"`
			ChecksumValue string `json:"checksumValue"`
		} `json:"checksums"`
	} `json:"files"`
	Relationships []struct {
		RelationshipType string `json:"relationshipType"`
	} `json:"relationships"`
}

func TestSBOMWriterAdapter(t *testing.T) {
	root := t.TempDir()
	manifest := sampleManifest()
	manifest.License = "MIT"
	for _, file := range manifest.Files {
		writeTree(t, root, map[string]string{file: "same content"})
	}
	dir := filepath.Join(t.TempDir(), "out")

	path, err := NewSBOMWriterAdapter().WriteSBOM(dir, root, manifest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, SBOMFileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc sbomDocument
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "SPDX-2.3", doc.SPDXVersion)
	require.Len(t, doc.Packages, 1)
	assert.Equal(t, "python311-jaraco.classes", doc.Packages[0].Name)
	assert.Equal(t, "100:3.2.2-1", doc.Packages[0].VersionInfo)
	assert.Equal(t, "MIT", doc.Packages[0].LicenseDeclared)
	require.Len(t, doc.Files, 2)
	assert.Equal(t, "./usr/lib/python3.11/site-packages/jaraco/classes/__init__.py", doc.Files[0].FileName)
	assert.Equal(t, "BLAKE3", doc.Files[0].Checksums[0].Algorithm)
	assert.Len(t, doc.Files[0].Checksums[0].ChecksumValue, 64)
	assert.Equal(t, doc.Files[0].Checksums[0].ChecksumValue, doc.Files[1].Checksums[0].ChecksumValue)
	assert.Len(t, doc.Relationships, 3)
}

func TestSBOMWriterAdapterErrors(t *testing.T) {
	_, err := NewSBOMWriterAdapter().WriteSBOM("", t.TempDir(), sampleManifest())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))

	_, err = NewSBOMWriterAdapter().WriteSBOM(t.TempDir(), t.TempDir(), sampleManifest())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

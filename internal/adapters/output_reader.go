package adapters

import (
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"variant-packager/internal/ports"
	"variant-packager/internal/types"
)

type ManifestReaderAdapter struct{}

func NewManifestReaderAdapter() ManifestReaderAdapter {
	return ManifestReaderAdapter{}
}

func (a ManifestReaderAdapter) ReadManifest(path string) (types.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Manifest{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("manifest not found").
			WithCause(err)
	}
	var manifest types.Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return types.Manifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse manifest").
			WithCause(err)
	}
	manifest.CreatedAt = normalizeCreatedAt(manifest.CreatedAt)
	return manifest, nil
}

var _ ports.ManifestReaderPort = ManifestReaderAdapter{}

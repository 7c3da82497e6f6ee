package ports

import "variant-packager/internal/types"

type ManifestWriterPort interface {
	WriteManifest(manifest types.Manifest) error
}

type ManifestReaderPort interface {
	ReadManifest(path string) (types.Manifest, error)
}

// FileListerPort lists the regular files and symlinks under a staging root
// as sorted slash-separated relative paths.
type FileListerPort interface {
	ListFiles(root string) ([]string, error)
}

// SBOMWriterPort describes the files of a finalized staging root as an
// SPDX document next to the manifest.
type SBOMWriterPort interface {
	WriteSBOM(dir string, stagingRoot string, manifest types.Manifest) (string, error)
}

package adapters

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"variant-packager/internal/ports"
	"variant-packager/internal/types"
)

const (
	ManifestFileName = "manifest.yaml"
	FileListName     = "files.list"
)

type ManifestFileAdapter struct {
	Dir string
}

func NewManifestFileAdapter(dir string) ManifestFileAdapter {
	return ManifestFileAdapter{Dir: dir}
}

// WriteManifest writes manifest.yaml and files.list. The file list holds
// one absolute install path per line, the form a %files section uses.
func (a ManifestFileAdapter) WriteManifest(manifest types.Manifest) error {
	path, err := a.ensurePath(ManifestFileName)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode manifest").
			WithCause(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write manifest").
			WithCause(err)
	}

	listPath, err := a.ensurePath(FileListName)
	if err != nil {
		return err
	}
	var lines []string
	if manifest.Profile.LicenseFile != "" {
		lines = append(lines, "%license "+manifest.Profile.LicenseFile)
	}
	for _, file := range manifest.Files {
		lines = append(lines, "/"+strings.TrimPrefix(file, "/"))
	}
	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}
	if err := os.WriteFile(listPath, []byte(content), 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write file list").
			WithCause(err)
	}
	return nil
}

func (a ManifestFileAdapter) ensurePath(filename string) (string, error) {
	if a.Dir == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is empty")
	}
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	return filepath.Join(a.Dir, filename), nil
}

var _ ports.ManifestWriterPort = ManifestFileAdapter{}

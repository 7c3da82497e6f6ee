package app

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"variant-packager/internal/adapters"
)

// Inspect reads a written manifest and reports installed files that the
// profile's file manifest root does not cover.
func (s Service) Inspect(req InspectRequest) (InspectResult, error) {
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is required")
	}
	manifest, err := s.ManifestReader.ReadManifest(filepath.Join(outputDir, adapters.ManifestFileName))
	if err != nil {
		return InspectResult{}, err
	}
	var uncovered []string
	for _, file := range manifest.Files {
		if !coveredBy(manifest.Profile.FileManifestRoot, file) {
			uncovered = append(uncovered, file)
		}
	}
	return InspectResult{
		Manifest:  manifest,
		FileCount: len(manifest.Files),
		Uncovered: uncovered,
	}, nil
}

// coveredBy reports whether file or one of its parent directories matches
// the glob, the way a %files entry claims a whole directory.
func coveredBy(glob string, file string) bool {
	glob = strings.TrimPrefix(glob, "/")
	if glob == "" {
		return false
	}
	parts := strings.Split(strings.TrimPrefix(file, "/"), "/")
	for i := range parts {
		matched, err := path.Match(glob, strings.Join(parts[:i+1], "/"))
		if err != nil {
			return false
		}
		if matched {
			return true
		}
	}
	return false
}

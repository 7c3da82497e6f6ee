package types

import (
	"fmt"
	"strings"
)

// PackageIdentity names the single source package a build produces. Name is
// the canonical dotted ecosystem spelling, e.g. "jaraco.classes".
type PackageIdentity struct {
	Name    string `yaml:"name"`
	Epoch   uint   `yaml:"epoch"`
	Version string `yaml:"version"`
	Release string `yaml:"release"`
}

// EVR renders epoch:version-release. A zero epoch is omitted, the same way
// rpm prints it.
func (p PackageIdentity) EVR() string {
	version := strings.TrimSpace(p.Version)
	if release := strings.TrimSpace(p.Release); release != "" {
		version = version + "-" + release
	}
	if p.Epoch == 0 {
		return version
	}
	return fmt.Sprintf("%d:%s", p.Epoch, version)
}

func (p PackageIdentity) String() string {
	return fmt.Sprintf("%s %s", p.Name, p.EVR())
}

type Dependency struct {
	Name string `yaml:"name"`
}

package types

// Recipe is the on-disk description of one package build.
type Recipe struct {
	APIVersion   string          `yaml:"api_version"`
	Package      PackageIdentity `yaml:"package"`
	Summary      string          `yaml:"summary,omitempty"`
	License      string          `yaml:"license,omitempty"`
	Dependencies []Dependency    `yaml:"dependencies"`
	Source       RecipeSource    `yaml:"source"`
	Steps        RecipeSteps     `yaml:"steps,omitempty"`
}

type RecipeSource struct {
	Archive string `yaml:"archive"`

	// LicenseFile is relative to the extracted source tree.
	LicenseFile string `yaml:"license_file,omitempty"`
}

// RecipeSteps overrides the configured build and install commands. Each
// entry is an argv; "{workdir}" and "{root}" are substituted.
type RecipeSteps struct {
	Build   []string `yaml:"build,omitempty"`
	Install []string `yaml:"install,omitempty"`
}

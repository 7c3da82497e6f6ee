package types

// Manifest is the artifact handed to the downstream packaging tool. It is
// written only after a pipeline reaches BuildStateFinalized.
type Manifest struct {
	BuildID     string           `yaml:"build_id"`
	Package     PackageIdentity  `yaml:"package"`
	License     string           `yaml:"license,omitempty"`
	Environment EnvironmentFacts `yaml:"environment"`
	Profile     PackagingProfile `yaml:"profile"`
	Files       []string         `yaml:"files"`
	Finalize    FinalizeSummary  `yaml:"finalize"`
	CreatedAt   string           `yaml:"created_at"`
}

type FinalizeSummary struct {
	Purged       int `yaml:"purged"`
	Linked       int `yaml:"linked"`
	DuplicateSet int `yaml:"duplicate_sets"`
}

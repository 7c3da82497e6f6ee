package types

type PackagingProfile struct {
	Tag              ProfileTag `yaml:"tag"`
	SubpackageName   string     `yaml:"subpackage_name"`
	Requires         []string   `yaml:"requires"`
	Provides         []string   `yaml:"provides"`
	FileManifestRoot string     `yaml:"file_manifest_root"`
	LicenseFile      string     `yaml:"license_file,omitempty"`
}

// IdentifierSet holds synthesized provide and require strings. Both slices
// are sorted and free of duplicates.
type IdentifierSet struct {
	Provides []string
	Requires []string
}

type StateTransition struct {
	From BuildState
	To   BuildState
}

type FinalizeReport struct {
	Purged       int
	Linked       int
	DuplicateSet int
}

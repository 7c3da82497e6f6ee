package app

import (
	"time"

	"variant-packager/internal/core"
	"variant-packager/internal/types"
)

// EnvironmentRequest selects how facts are gathered. The version fields are
// raw strings so that the probe, not the caller, decides what is numeric.
type EnvironmentRequest struct {
	Probe             string
	TumbleweedVersion string
	EnterpriseVersion string
	Interpreter       string
}

type ClassifyRequest struct {
	Environment EnvironmentRequest
}

type ClassifyResult struct {
	Tag   types.ProfileTag
	Facts types.EnvironmentFacts
}

type ResolveRequest struct {
	RecipePath  string
	Environment EnvironmentRequest
}

type ResolveResult struct {
	Identity types.PackageIdentity
	Facts    types.EnvironmentFacts
	Profile  types.PackagingProfile
}

type BuildRequest struct {
	RecipePath     string
	WorkDir        string
	StagingDir     string
	OutputDir      string
	Environment    EnvironmentRequest
	BuildCommand   []string
	InstallCommand []string
	StepTimeout    time.Duration
}

type BuildResult struct {
	BuildID      string
	Outcome      core.BuildOutcome
	Profile      types.PackagingProfile
	ManifestPath string
	SBOMPath     string
	FileCount    int
}

type FinalizeRequest struct {
	StagingDir    string
	PurgePatterns []string
}

type FinalizeResult struct {
	Report types.FinalizeReport
}

type ValidateRequest struct {
	RecipePath string
}

type ValidateResult struct {
	Identity     types.PackageIdentity
	EVR          string
	Dependencies int
}

type InspectRequest struct {
	OutputDir string
}

type InspectResult struct {
	Manifest  types.Manifest
	FileCount int
	Uncovered []string
}

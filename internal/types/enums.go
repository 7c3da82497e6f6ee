package types

type ProfileTag string

const (
	ProfileTagSUSETumbleweed ProfileTag = "suse-tumbleweed"
	ProfileTagSUSEEnterprise ProfileTag = "suse-enterprise"
	ProfileTagGeneric        ProfileTag = "generic"
)

type BuildState string

const (
	BuildStatePending   BuildState = "pending"
	BuildStateExtracted BuildState = "extracted"
	BuildStateBuilt     BuildState = "built"
	BuildStateInstalled BuildState = "installed"
	BuildStateFinalized BuildState = "finalized"
	BuildStateFailed    BuildState = "failed"
)

// Terminal reports whether no further transition can leave the state.
func (s BuildState) Terminal() bool {
	return s == BuildStateFinalized || s == BuildStateFailed
}

type BuildPhase string

const (
	BuildPhaseClassify BuildPhase = "classify"
	BuildPhaseResolve  BuildPhase = "resolve"
	BuildPhaseExtract  BuildPhase = "extract"
	BuildPhaseBuild    BuildPhase = "build"
	BuildPhaseInstall  BuildPhase = "install"
	BuildPhaseFinalize BuildPhase = "finalize"
)

type ProbeKind string

const (
	ProbeKindStatic ProbeKind = "static"
	ProbeKindRPM    ProbeKind = "rpm"
)

package core

import (
	"strconv"
	"strings"

	"variant-packager/internal/shared"
	"variant-packager/internal/types"
)

const defaultInterpreterMajor = 3

// nameConvention renders one spelling of a logical name. Qualified
// conventions embed the interpreter MAJOR.MINOR and are only emitted when
// the environment pins one.
type nameConvention struct {
	qualified bool
	render    func(name string, major string, iv types.InterpreterVersion) string
}

var provideConventions = []nameConvention{
	{render: func(name string, major string, _ types.InterpreterVersion) string {
		return "python" + major + "dist(" + name + ")"
	}},
	{render: func(name string, _ string, _ types.InterpreterVersion) string {
		return "python-" + name
	}},
	{render: func(name string, major string, _ types.InterpreterVersion) string {
		return "python" + major + "-" + name
	}},
	{qualified: true, render: func(name string, _ string, iv types.InterpreterVersion) string {
		return "python" + iv.Dotted() + "-" + name
	}},
	{qualified: true, render: func(name string, _ string, iv types.InterpreterVersion) string {
		return "python" + iv.Dotted() + "dist(" + name + ")"
	}},
	{qualified: true, render: func(name string, _ string, iv types.InterpreterVersion) string {
		return "python" + iv.NoDots() + "-" + name
	}},
	{qualified: true, render: func(name string, _ string, iv types.InterpreterVersion) string {
		return "python" + iv.NoDots() + "dist(" + name + ")"
	}},
}

// IdentifierSynthesizer expands logical names into every provide and
// require spelling in use. It holds no state and is safe for concurrent use.
type IdentifierSynthesizer struct{}

func NewIdentifierSynthesizer() IdentifierSynthesizer {
	return IdentifierSynthesizer{}
}

// Synthesize returns the versioned provides for identity and the requires
// for deps under tag. Every provide carries the same EVR. Interpreter
// qualified forms are only produced for the SUSE families, and only
// GENERIC adds the dash-normalized spelling of the name.
func (s IdentifierSynthesizer) Synthesize(tag types.ProfileTag, identity types.PackageIdentity, deps []types.Dependency, facts types.EnvironmentFacts) types.IdentifierSet {
	iv, qualified := qualifiedInterpreter(tag, facts)
	major := interpreterMajor(facts)
	evr := identity.EVR()

	var provides []string
	for _, name := range nameSpellings(tag, identity.Name) {
		for _, convention := range provideConventions {
			if convention.qualified && !qualified {
				continue
			}
			provides = append(provides, convention.render(name, major, iv)+" = "+evr)
		}
	}

	var requires []string
	for _, dep := range deps {
		requires = append(requires, s.SynthesizeRequires(dep, tag, facts)...)
	}
	return types.IdentifierSet{
		Provides: shared.UniqueSortedStrings(provides),
		Requires: shared.UniqueSortedStrings(requires),
	}
}

// SynthesizeRequires returns the unversioned spellings that require dep
// under tag: the distribution package name and the ecosystem form. An
// empty dependency name yields nothing.
func (s IdentifierSynthesizer) SynthesizeRequires(dep types.Dependency, tag types.ProfileTag, facts types.EnvironmentFacts) []string {
	name := shared.NormalizePipName(dep.Name)
	if name == "" {
		return nil
	}
	return []string{
		DistributionPrefix(tag, facts) + "-" + name,
		"python" + interpreterMajor(facts) + "dist(" + name + ")",
	}
}

// DistributionPrefix is the package prefix tag uses for Python modules:
// python<nodots> on Tumbleweed with a known interpreter, python3 otherwise.
func DistributionPrefix(tag types.ProfileTag, facts types.EnvironmentFacts) string {
	if tag == types.ProfileTagSUSETumbleweed {
		if iv, ok := types.ParseInterpreter(facts.Interpreter); ok {
			return "python" + iv.NoDots()
		}
	}
	return "python3"
}

// nameSpellings returns the canonical name, followed for GENERIC by its
// PEP 503 form when that differs.
func nameSpellings(tag types.ProfileTag, name string) []string {
	canonical := strings.TrimSpace(name)
	if canonical == "" {
		return nil
	}
	spellings := []string{canonical}
	if tag != types.ProfileTagGeneric {
		return spellings
	}
	if normalized := shared.NormalizePipName(canonical); normalized != canonical {
		spellings = append(spellings, normalized)
	}
	return spellings
}

// qualifiedInterpreter reports the interpreter version to use for qualified
// spellings. Only the SUSE families pin one; everything else gets the
// family-generic spellings.
func qualifiedInterpreter(tag types.ProfileTag, facts types.EnvironmentFacts) (types.InterpreterVersion, bool) {
	switch tag {
	case types.ProfileTagSUSETumbleweed, types.ProfileTagSUSEEnterprise:
		return types.ParseInterpreter(facts.Interpreter)
	default:
		return types.InterpreterVersion{}, false
	}
}

func interpreterMajor(facts types.EnvironmentFacts) string {
	if iv, ok := types.ParseInterpreter(facts.Interpreter); ok {
		return strconv.Itoa(iv.Major)
	}
	return strconv.Itoa(defaultInterpreterMajor)
}

package core

import (
	"context"
	"fmt"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"variant-packager/internal/shared"
	"variant-packager/internal/types"
)

// profileRow is one entry of the static profile table. The prefix passed
// to each column is DistributionPrefix for the row's tag, e.g. "python311"
// or "python3".
type profileRow struct {
	subpackage         func(prefix string, name string) string
	interpreterRequire func(prefix string) string
	manifestGlob       func(iv types.InterpreterVersion, known bool) string
}

var profileTable = map[types.ProfileTag]profileRow{
	types.ProfileTagSUSETumbleweed: {
		subpackage: func(prefix string, name string) string {
			return prefix + "-" + name
		},
		interpreterRequire: func(prefix string) string {
			return prefix + "-base"
		},
		manifestGlob: suseSitelibGlob,
	},
	types.ProfileTagSUSEEnterprise: {
		subpackage: func(prefix string, name string) string {
			return prefix + "-" + name
		},
		interpreterRequire: func(prefix string) string {
			return prefix + "-base"
		},
		manifestGlob: suseSitelibGlob,
	},
	types.ProfileTagGeneric: {
		subpackage: func(prefix string, name string) string {
			return prefix + "-" + shared.NormalizePipName(name)
		},
		interpreterRequire: func(prefix string) string {
			return prefix
		},
		manifestGlob: func(types.InterpreterVersion, bool) string {
			return "usr/lib/python3*/*-packages/*"
		},
	},
}

func suseSitelibGlob(iv types.InterpreterVersion, known bool) string {
	if !known {
		return "usr/lib/python3*/site-packages/*"
	}
	return "usr/lib/python" + iv.Dotted() + "/site-packages/*"
}

type ProfileResolver struct {
	Synthesizer IdentifierSynthesizer
}

func NewProfileResolver() ProfileResolver {
	return ProfileResolver{Synthesizer: NewIdentifierSynthesizer()}
}

// Resolve realizes the single profile for tag. Only that table row is
// evaluated. The result is a pure function of its arguments.
func (r ProfileResolver) Resolve(ctx context.Context, tag types.ProfileTag, identity types.PackageIdentity, deps []types.Dependency, facts types.EnvironmentFacts) (types.PackagingProfile, error) {
	row, ok := profileTable[tag]
	if !ok {
		return types.PackagingProfile{}, types.NewPipelineError(types.ErrorKindConfiguration, types.BuildPhaseResolve,
			errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("unknown profile tag %q", tag)))
	}
	if err := ValidateIdentity(identity); err != nil {
		return types.PackagingProfile{}, types.NewPipelineError(types.ErrorKindConfiguration, types.BuildPhaseResolve, err)
	}

	iv, known := types.ParseInterpreter(facts.Interpreter)
	prefix := DistributionPrefix(tag, facts)
	assert.NotEmpty(ctx, prefix, "profile prefix must not be empty")
	name := strings.TrimSpace(identity.Name)

	for _, dep := range deps {
		if shared.NormalizePipName(dep.Name) == "" {
			return types.PackagingProfile{}, types.NewPipelineError(types.ErrorKindConfiguration, types.BuildPhaseResolve,
				errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg("dependency name must not be empty"))
		}
	}
	ids := r.Synthesizer.Synthesize(tag, identity, deps, facts)
	requires := append([]string{row.interpreterRequire(prefix)}, ids.Requires...)

	profile := types.PackagingProfile{
		Tag:              tag,
		SubpackageName:   row.subpackage(prefix, name),
		Requires:         shared.UniqueSortedStrings(requires),
		Provides:         ids.Provides,
		FileManifestRoot: row.manifestGlob(iv, known),
	}
	assert.NotEmpty(ctx, profile.SubpackageName, "subpackage name must not be empty")
	log.Ctx(ctx).Debug().
		Str("tag", string(tag)).
		Str("subpackage", profile.SubpackageName).
		Int("requires", len(profile.Requires)).
		Int("provides", len(profile.Provides)).
		Msg("profile resolved")
	return profile, nil
}

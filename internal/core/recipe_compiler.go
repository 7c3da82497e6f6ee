package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"variant-packager/internal/shared"
	"variant-packager/internal/types"
)

const RecipeAPIVersion = "variant-packager/v1"

type RecipeCompiler struct{}

func NewRecipeCompiler() RecipeCompiler {
	return RecipeCompiler{}
}

// ValidateRecipe rejects recipes that could not drive a build. It does not
// touch the filesystem; the archive is only checked when extracted.
func (c RecipeCompiler) ValidateRecipe(ctx context.Context, recipe types.Recipe) error {
	if strings.TrimSpace(recipe.APIVersion) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("api_version must be set")
	}
	if recipe.APIVersion != RecipeAPIVersion {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported api_version %s (want %s)", recipe.APIVersion, RecipeAPIVersion))
	}
	if err := ValidateIdentity(recipe.Package); err != nil {
		return err
	}
	if err := validateDependencies(recipe.Package, recipe.Dependencies); err != nil {
		return err
	}
	if strings.TrimSpace(recipe.Source.Archive) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("source.archive must be set")
	}
	if err := validateSteps(recipe.Steps); err != nil {
		return err
	}
	log.Ctx(ctx).Debug().Str("recipe", recipe.Package.Name).Msg("recipe validated")
	return nil
}

func validateDependencies(identity types.PackageIdentity, deps []types.Dependency) error {
	self := shared.NormalizePipName(identity.Name)
	seen := map[string]struct{}{}
	for _, dep := range deps {
		name := shared.NormalizePipName(dep.Name)
		if name == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("dependency name must not be empty")
		}
		if name == self {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("package %s must not depend on itself", identity.Name))
		}
		if _, ok := seen[name]; ok {
			return errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg(fmt.Sprintf("dependency %s listed twice", dep.Name))
		}
		seen[name] = struct{}{}
	}
	return nil
}

func validateSteps(steps types.RecipeSteps) error {
	for _, step := range [][]string{steps.Build, steps.Install} {
		if len(step) > 0 && strings.TrimSpace(step[0]) == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("step command must not be empty")
		}
	}
	return nil
}

package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"variant-packager/internal/core"
	"variant-packager/internal/types"
)

func (s Service) Resolve(ctx context.Context, req ResolveRequest) (ResolveResult, error) {
	recipe, err := s.loadRecipe(ctx, req.RecipePath)
	if err != nil {
		return ResolveResult{}, err
	}
	classified, err := s.Classify(ctx, ClassifyRequest{Environment: req.Environment})
	if err != nil {
		return ResolveResult{}, err
	}
	profile, err := resolveProfile(ctx, recipe, classified)
	if err != nil {
		return ResolveResult{}, err
	}
	return ResolveResult{
		Identity: recipe.Package,
		Facts:    classified.Facts,
		Profile:  profile,
	}, nil
}

func resolveProfile(ctx context.Context, recipe types.Recipe, classified ClassifyResult) (types.PackagingProfile, error) {
	profile, err := core.NewProfileResolver().Resolve(ctx, classified.Tag, recipe.Package, recipe.Dependencies, classified.Facts)
	if err != nil {
		return types.PackagingProfile{}, err
	}
	profile.LicenseFile = strings.TrimSpace(recipe.Source.LicenseFile)
	return profile, nil
}

// loadRecipe reads and validates a recipe. Any problem with it is a
// configuration error raised before the pipeline starts.
func (s Service) loadRecipe(ctx context.Context, path string) (types.Recipe, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return types.Recipe{}, types.NewPipelineError(types.ErrorKindConfiguration, types.BuildPhaseResolve,
			errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("recipe path is required"))
	}
	recipe, err := s.RecipeLoader.LoadRecipe(path)
	if err != nil {
		return types.Recipe{}, types.NewPipelineError(types.ErrorKindConfiguration, types.BuildPhaseResolve, err)
	}
	if err := core.NewRecipeCompiler().ValidateRecipe(ctx, recipe); err != nil {
		return types.Recipe{}, types.NewPipelineError(types.ErrorKindConfiguration, types.BuildPhaseResolve, err)
	}
	return recipe, nil
}

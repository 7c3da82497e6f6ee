package app

import (
	"context"
)

func (s Service) Validate(ctx context.Context, req ValidateRequest) (ValidateResult, error) {
	recipe, err := s.loadRecipe(ctx, req.RecipePath)
	if err != nil {
		return ValidateResult{}, err
	}
	return ValidateResult{
		Identity:     recipe.Package,
		EVR:          recipe.Package.EVR(),
		Dependencies: len(recipe.Dependencies),
	}, nil
}

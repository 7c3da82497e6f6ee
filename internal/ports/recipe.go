package ports

import "variant-packager/internal/types"

type RecipeLoaderPort interface {
	LoadRecipe(path string) (types.Recipe, error)
}

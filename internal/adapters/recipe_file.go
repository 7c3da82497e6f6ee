package adapters

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"variant-packager/internal/ports"
	"variant-packager/internal/types"
)

type RecipeFileAdapter struct{}

func NewRecipeFileAdapter() RecipeFileAdapter {
	return RecipeFileAdapter{}
}

// LoadRecipe parses a recipe file. A relative source archive is resolved
// against the recipe's directory.
func (a RecipeFileAdapter) LoadRecipe(path string) (types.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Recipe{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("recipe file not found").
			WithCause(err)
	}
	var recipe types.Recipe
	if err := yaml.Unmarshal(data, &recipe); err != nil {
		return types.Recipe{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse recipe yaml").
			WithCause(err)
	}
	archive := strings.TrimSpace(recipe.Source.Archive)
	if archive != "" && !filepath.IsAbs(archive) {
		recipe.Source.Archive = filepath.Join(filepath.Dir(path), archive)
	}
	return recipe, nil
}

var _ ports.RecipeLoaderPort = RecipeFileAdapter{}

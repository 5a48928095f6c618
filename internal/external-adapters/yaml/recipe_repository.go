package yaml

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
	"github.com/ochairo/tinsrecipe/internal/domain/interfaces"
)

//go:embed default_recipe.yml
var defaultRecipe []byte

// RecipeRepository implements repositories.RecipeRepository using YAML files.
// The built-in libtins recipe is served when the directory has no file for it.
type RecipeRepository struct {
	recipesDir string
	parser     *RecipeParser
	logger     interfaces.Logger
}

// NewRecipeRepository creates a new YAML-based recipe repository
func NewRecipeRepository(recipesDir string, logger interfaces.Logger) *RecipeRepository {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &RecipeRepository{
		recipesDir: recipesDir,
		parser:     NewRecipeParser(),
		logger:     logger,
	}
}

// DefaultRecipe returns the built-in libtins recipe
func DefaultRecipe() (*entities.Recipe, error) {
	return NewRecipeParser().Parse(defaultRecipe)
}

// GetRecipe retrieves a package recipe by name
func (r *RecipeRepository) GetRecipe(_ context.Context, name string) (*entities.Recipe, error) {
	for _, ext := range []string{".yml", ".yaml"} {
		filePath := filepath.Join(r.recipesDir, name+ext)
		if _, err := os.Stat(filePath); err == nil {
			return r.parser.ParseFile(filePath)
		}
	}

	builtin, err := DefaultRecipe()
	if err != nil {
		return nil, err
	}
	if builtin.Name == name {
		r.logger.Debug("using built-in recipe", interfaces.F("name", name))
		return builtin, nil
	}

	return nil, fmt.Errorf("recipe not found: %s", name)
}

// ListRecipes returns all available package recipes
func (r *RecipeRepository) ListRecipes(_ context.Context) ([]*entities.Recipe, error) {
	recipes := make([]*entities.Recipe, 0)
	seen := make(map[string]bool)

	entries, err := os.ReadDir(r.recipesDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read recipes directory: %w", err)
	}

	for _, entry := range entries {
		// Skip non-YAML files
		if entry.IsDir() || !(strings.HasSuffix(entry.Name(), ".yml") || strings.HasSuffix(entry.Name(), ".yaml")) {
			continue
		}

		filePath := filepath.Join(r.recipesDir, entry.Name())
		def, err := r.parser.ParseFile(filePath)
		if err != nil {
			// Log warning but continue processing other files
			r.logger.Warn("failed to parse recipe", interfaces.F("file", entry.Name()), interfaces.F("error", err))
			continue
		}

		recipes = append(recipes, def)
		seen[def.Name] = true
	}

	builtin, err := DefaultRecipe()
	if err != nil {
		return nil, err
	}
	if !seen[builtin.Name] {
		recipes = append(recipes, builtin)
	}

	return recipes, nil
}

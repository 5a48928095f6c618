// Package yaml provides YAML-based recipe parsing and repository implementations.
package yaml

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
	"github.com/ochairo/tinsrecipe/internal/domain/services"
)

// yamlRecipe represents the raw YAML structure
type yamlRecipe struct {
	Name           string                 `yaml:"name"`
	Version        string                 `yaml:"version"`
	Author         string                 `yaml:"author"`
	Description    string                 `yaml:"description"`
	License        string                 `yaml:"license"`
	URL            string                 `yaml:"url"`
	ExportsSources []string               `yaml:"exports_sources"`
	DefaultOptions map[string]interface{} `yaml:"default_options"`
}

// RecipeParser parses YAML recipe files
type RecipeParser struct{}

// NewRecipeParser creates a new YAML parser
func NewRecipeParser() *RecipeParser {
	return &RecipeParser{}
}

// ParseFile parses a YAML recipe file into a Recipe entity
func (p *RecipeParser) ParseFile(filePath string) (*entities.Recipe, error) {
	//nolint:gosec // G304: filePath is recipe path from repository
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return p.Parse(data)
}

// Parse parses YAML bytes into a Recipe entity
func (p *RecipeParser) Parse(data []byte) (*entities.Recipe, error) {
	var yamlDef yamlRecipe
	if err := yaml.Unmarshal(data, &yamlDef); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Validate required fields
	if yamlDef.Name == "" {
		return nil, fmt.Errorf("recipe must have a name")
	}
	if yamlDef.Version == "" {
		return nil, fmt.Errorf("recipe %s must have a version", yamlDef.Name)
	}

	defaults, err := services.OptionValues(yamlDef.DefaultOptions)
	if err != nil {
		return nil, fmt.Errorf("recipe %s has invalid default_options: %w", yamlDef.Name, err)
	}

	return &entities.Recipe{
		Name:           yamlDef.Name,
		Version:        yamlDef.Version,
		Author:         yamlDef.Author,
		Description:    yamlDef.Description,
		License:        yamlDef.License,
		URL:            yamlDef.URL,
		ExportsSources: yamlDef.ExportsSources,
		DefaultOptions: defaults,
	}, nil
}

// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
	"github.com/ochairo/tinsrecipe/internal/domain/interfaces"
	"github.com/ochairo/tinsrecipe/internal/domain/interfaces/gateways"
	"github.com/ochairo/tinsrecipe/internal/domain/interfaces/repositories"
	"github.com/ochairo/tinsrecipe/internal/domain/services"
)

// ArtifactPublisher writes the sidecar files of a package archive
type ArtifactPublisher interface {
	GenerateAllArtifacts(ctx context.Context, tarballPath string, resolution entities.Resolution) (*services.PackageArtifacts, error)
}

// BuildOrchestrator coordinates the complete package build workflow
type BuildOrchestrator struct {
	recipeRepo repositories.RecipeRepository
	buildTool  gateways.BuildTool
	packager   gateways.Packager
	publisher  ArtifactPublisher
	user       string
	channel    string
	outputDir  string
	logger     interfaces.Logger
}

// BuildOrchestratorConfig holds configuration for the orchestrator
type BuildOrchestratorConfig struct {
	User      string
	Channel   string
	OutputDir string
}

// NewBuildOrchestrator creates a new build orchestrator. buildTool and
// publisher may be nil for callers that only resolve or only package.
func NewBuildOrchestrator(
	recipeRepo repositories.RecipeRepository,
	buildTool gateways.BuildTool,
	packager gateways.Packager,
	publisher ArtifactPublisher,
	config BuildOrchestratorConfig,
	logger interfaces.Logger,
) *BuildOrchestrator {
	outputDir := config.OutputDir
	if outputDir == "" {
		outputDir = "dist"
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	return &BuildOrchestrator{
		recipeRepo: recipeRepo,
		buildTool:  buildTool,
		packager:   packager,
		publisher:  publisher,
		user:       config.User,
		channel:    config.Channel,
		outputDir:  outputDir,
		logger:     logger,
	}
}

// BuildRequest describes one build of a recipe
type BuildRequest struct {
	Recipe    string
	Options   map[string]string // raw option values, validated against the recipe defaults
	Platform  entities.Platform
	SourceDir string
	BuildDir  string // defaults to SourceDir/build
	SkipBuild bool   // package an existing build tree
}

// BuildResult contains the result of a build operation
type BuildResult struct {
	Recipe        *entities.Recipe
	Resolution    entities.Resolution
	Artifact      *entities.Artifact
	Sidecars      *services.PackageArtifacts
	BuildDuration time.Duration
	TotalDuration time.Duration
	Success       bool
	Error         error
}

// Recipe loads a recipe by name
func (o *BuildOrchestrator) Recipe(ctx context.Context, name string) (*entities.Recipe, error) {
	recipe, err := o.recipeRepo.GetRecipe(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return recipe, nil
}

// Resolve loads a recipe, applies its defaults and the given option values,
// and resolves for platform.
func (o *BuildOrchestrator) Resolve(ctx context.Context, recipeName string, values map[string]string, platform entities.Platform) (*entities.Recipe, entities.Resolution, error) {
	recipe, err := o.Recipe(ctx, recipeName)
	if err != nil {
		return nil, entities.Resolution{}, err
	}

	defaults, err := services.RecipeDefaults(recipe)
	if err != nil {
		return recipe, entities.Resolution{}, fmt.Errorf("recipe %s: %w", recipe.Name, err)
	}

	opts, err := services.ParseOptions(values, defaults)
	if err != nil {
		return recipe, entities.Resolution{}, err
	}

	resolution, err := services.NewResolver(recipe.Reference(o.user, o.channel)).Resolve(opts, platform)
	if err != nil {
		return recipe, entities.Resolution{}, err
	}

	o.logger.Debug("resolved",
		interfaces.F("reference", resolution.Reference.String()),
		interfaces.F("os", resolution.OS),
		interfaces.F("requires", strings.Join(resolution.Dependencies.References(), ",")))

	return recipe, resolution, nil
}

// BuildPackage executes the complete build workflow for a package
func (o *BuildOrchestrator) BuildPackage(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	startTime := time.Now()
	result := &BuildResult{}

	// Step 1: Load recipe and resolve
	recipe, resolution, err := o.Resolve(ctx, req.Recipe, req.Options, req.Platform)
	result.Recipe = recipe
	if err != nil {
		result.Error = err
		return result, result.Error
	}
	result.Resolution = resolution

	buildDir := req.BuildDir
	if buildDir == "" {
		buildDir = filepath.Join(req.SourceDir, "build")
	}

	// Step 2: Configure and build
	if !req.SkipBuild {
		if o.buildTool == nil {
			result.Error = fmt.Errorf("no build tool configured")
			return result, result.Error
		}

		buildStart := time.Now()
		if err := o.buildTool.Configure(ctx, req.SourceDir, buildDir, resolution.BuildConfig, nil); err != nil {
			result.Error = fmt.Errorf("configure failed: %w", err)
			return result, result.Error
		}
		if err := o.buildTool.Build(ctx, buildDir); err != nil {
			result.Error = fmt.Errorf("build failed: %w", err)
			return result, result.Error
		}
		result.BuildDuration = time.Since(buildStart)
	}

	// Step 3: Package outputs selected by the artifact spec
	roots := []string{req.SourceDir, buildDir}
	artifact, err := o.packager.PackageArtifacts(ctx, resolution.Artifacts, roots, resolution.Reference, resolution.OS, o.outputDir)
	if err != nil {
		result.Error = fmt.Errorf("packaging failed: %w", err)
		return result, result.Error
	}
	result.Artifact = artifact

	// Step 4: Digest, lock and signature
	if o.publisher != nil {
		sidecars, err := o.publisher.GenerateAllArtifacts(ctx, artifact.Path, resolution)
		if err != nil {
			result.Error = fmt.Errorf("failed to publish package metadata: %w", err)
			return result, result.Error
		}
		result.Sidecars = sidecars
	}

	result.Success = true
	result.TotalDuration = time.Since(startTime)
	return result, nil
}

// GetBuildSummary returns a human-readable summary of the build
func (r *BuildResult) GetBuildSummary() string {
	if !r.Success {
		return fmt.Sprintf("Build failed: %v", r.Error)
	}

	requires := "none"
	if len(r.Resolution.Dependencies) > 0 {
		requires = strings.Join(r.Resolution.Dependencies.References(), ", ")
	}

	summary := fmt.Sprintf(`Build successful!
Package: %s
Platform: %s
Requires: %s
Archive: %s
Build: %v
Total: %v`,
		r.Resolution.Reference,
		r.Resolution.OS,
		requires,
		r.Artifact.Path,
		r.BuildDuration,
		r.TotalDuration,
	)

	if r.Sidecars != nil {
		summary += fmt.Sprintf("\nSHA256: %s", r.Sidecars.Digest)
		if r.Sidecars.SignaturePath != "" {
			summary += fmt.Sprintf("\nSignature: %s", r.Sidecars.SignaturePath)
		}
	}

	return summary
}

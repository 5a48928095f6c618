// Package main provides the tinsrecipe CLI for resolving, building and verifying libtins packages.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ochairo/tinsrecipe/internal/config"
	"github.com/ochairo/tinsrecipe/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/tinsrecipe/internal/domain-orchestrators"
	"github.com/ochairo/tinsrecipe/internal/domain/entities"
	"github.com/ochairo/tinsrecipe/internal/domain/interfaces"
	ports "github.com/ochairo/tinsrecipe/internal/domain/interfaces/gateways"
	"github.com/ochairo/tinsrecipe/internal/domain/services"
	"github.com/ochairo/tinsrecipe/internal/external-adapters/logging"
	"github.com/ochairo/tinsrecipe/internal/external-adapters/toml"
	"github.com/ochairo/tinsrecipe/internal/external-adapters/yaml"
)

// Version is set via -ldflags
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1) //nolint:gocritic // stop already called
	}
}

// app carries the state shared by every subcommand
type app struct {
	cfgFile  string
	logLevel string

	cfg    *config.Config
	logger interfaces.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "tinsrecipe",
		Short: "Package recipe resolver for libtins",
		Long: `tinsrecipe - Package recipe resolver for libtins

Turns libtins build options and a target OS into the dependencies to
fetch, the CMake definitions to pass and the files to package. It can
also drive the build, publish the archive and verify it as a consumer.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is "+filepath.Join(config.ConfigDir(), "config.yaml")+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	root.AddCommand(
		newResolveCmd(a),
		newOptionsCmd(a),
		newBuildCmd(a),
		newPackageCmd(a),
		newVerifyCmd(a),
		newListCmd(a),
	)

	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, path, err := config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: a.cfgFile})
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, "tinsrecipe")
	if err != nil {
		return err
	}
	if path != "" {
		logger.Debug("loaded config", interfaces.F("path", path))
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) buildOrchestrator(tool ports.BuildTool, publisher orchestrators.ArtifactPublisher) *orchestrators.BuildOrchestrator {
	return orchestrators.NewBuildOrchestrator(
		yaml.NewRecipeRepository(a.cfg.RecipesDir, a.logger),
		tool,
		gateways.NewPackager(a.logger),
		publisher,
		orchestrators.BuildOrchestratorConfig{
			User:      a.cfg.User,
			Channel:   a.cfg.Channel,
			OutputDir: a.cfg.OutputDir,
		},
		a.logger,
	)
}

func (a *app) cmake() *gateways.CMake {
	return gateways.NewCMake(gateways.NewScriptExecutor(a.logger), gateways.CMakeConfig{
		Command:      a.cfg.CMake.Command,
		CTestCommand: a.cfg.CMake.CTest,
		Generator:    a.cfg.CMake.Generator,
		BuildType:    a.cfg.CMake.BuildType,
		Timeout:      a.cfg.CMake.Timeout,
	}, a.logger)
}

// inputFlags are the resolution inputs shared by resolve, build and package
type inputFlags struct {
	recipe  string
	options []string
	profile string
	osName  string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.recipe, "recipe", "libtins", "recipe name")
	cmd.Flags().StringArrayVarP(&f.options, "option", "o", nil, "option assignment key=value (repeatable)")
	cmd.Flags().StringVar(&f.profile, "profile", "", "profile file (.yml, .yaml or .toml)")
	cmd.Flags().StringVar(&f.osName, "os", "", "target OS (default: profile os, then host)")
}

// inputs merges profile and command-line options and picks the platform.
// Command-line assignments win over the profile.
func (f *inputFlags) inputs() (map[string]string, entities.Platform, error) {
	values := map[string]string{}
	osName := f.osName

	if f.profile != "" {
		profile, err := loadProfile(f.profile)
		if err != nil {
			return nil, entities.Platform{}, err
		}
		for k, v := range profile.Options {
			values[k] = v
		}
		if osName == "" {
			osName = profile.OS
		}
	}

	assigned, err := services.ParseOptionAssignments(f.recipe, f.options)
	if err != nil {
		return nil, entities.Platform{}, err
	}
	for k, v := range assigned {
		values[k] = v
	}

	platform, err := detectPlatform(osName)
	if err != nil {
		return nil, entities.Platform{}, err
	}
	return values, platform, nil
}

func loadProfile(path string) (*entities.Profile, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.ParseProfileFile(path)
	case ".yml", ".yaml":
		return yaml.ParseProfileFile(path)
	default:
		return nil, fmt.Errorf("unsupported profile format %q (use .yml, .yaml or .toml)", filepath.Ext(path))
	}
}

// detectPlatform parses name, falling back to the host OS when empty
func detectPlatform(name string) (entities.Platform, error) {
	if name == "" {
		return services.HostPlatform()
	}
	return services.ParsePlatform(name)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ochairo/tinsrecipe/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/tinsrecipe/internal/domain-orchestrators"
	"github.com/ochairo/tinsrecipe/internal/domain/interfaces"
	ports "github.com/ochairo/tinsrecipe/internal/domain/interfaces/gateways"
	"github.com/ochairo/tinsrecipe/internal/domain/services"
	"github.com/ochairo/tinsrecipe/internal/external-adapters/gpg"
)

// buildFlags are shared by build and package
type buildFlags struct {
	inputFlags
	sourceDir string
	buildDir  string
}

func (f *buildFlags) register(cmd *cobra.Command) {
	f.inputFlags.register(cmd)
	cmd.Flags().StringVar(&f.sourceDir, "source", ".", "libtins source tree")
	cmd.Flags().StringVar(&f.buildDir, "build-dir", "", "CMake build tree (default <source>/build)")
}

func newBuildCmd(a *app) *cobra.Command {
	var f buildFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Configure, build and package libtins",
		Long: `Resolve the recipe, run CMake with the resolved definitions, package
the outputs selected by the artifact rules and publish the archive with
its digest, lock manifest and (when a signing key is configured)
detached signature.`,
		Example: `  tinsrecipe build --source ./libtins                     # Defaults, host OS
  tinsrecipe build --source ./libtins -o shared=False -o enable_wpa2=False
  tinsrecipe build --source ./libtins --profile windows.yml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBuild(cmd, f, false)
		},
	}

	f.register(cmd)
	return cmd
}

func newPackageCmd(a *app) *cobra.Command {
	var f buildFlags

	cmd := &cobra.Command{
		Use:   "package",
		Short: "Package an existing libtins build tree",
		Example: `  tinsrecipe package --source ./libtins --build-dir ./libtins/build
  tinsrecipe package --source ./libtins --os Macos`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBuild(cmd, f, true)
		},
	}

	f.register(cmd)
	return cmd
}

func (a *app) runBuild(cmd *cobra.Command, f buildFlags, skipBuild bool) error {
	values, platform, err := f.inputs()
	if err != nil {
		return err
	}

	publisher, err := a.publisher()
	if err != nil {
		return err
	}

	var tool ports.BuildTool
	if !skipBuild {
		tool = a.cmake()
	}

	result, err := a.buildOrchestrator(tool, publisher).BuildPackage(cmd.Context(), orchestrators.BuildRequest{
		Recipe:    f.recipe,
		Options:   values,
		Platform:  platform,
		SourceDir: f.sourceDir,
		BuildDir:  f.buildDir,
		SkipBuild: skipBuild,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.GetBuildSummary())
	return nil
}

// publisher wires digest and, when configured, signing
func (a *app) publisher() (*services.PackageArtifactsService, error) {
	var signer ports.Signer
	if a.cfg.Signing.Key != "" {
		s, err := gpg.NewSignerFromFile(a.cfg.Signing.Key, []byte(a.cfg.Signing.Passphrase))
		if err != nil {
			return nil, fmt.Errorf("failed to load signing key: %w", err)
		}
		a.logger.Info("signing packages", interfaces.F("key", s.KeyID()))
		signer = s
	}

	return services.NewPackageArtifactsService(gateways.NewChecksumVerifier(), signer, a.logger), nil
}

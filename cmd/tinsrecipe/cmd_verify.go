package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ochairo/tinsrecipe/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/tinsrecipe/internal/domain-orchestrators"
	"github.com/ochairo/tinsrecipe/internal/domain/entities"
	"github.com/ochairo/tinsrecipe/internal/domain/interfaces"
	ports "github.com/ochairo/tinsrecipe/internal/domain/interfaces/gateways"
	"github.com/ochairo/tinsrecipe/internal/domain/services"
)

func newVerifyCmd(a *app) *cobra.Command {
	var (
		archive     string
		packageDir  string
		testPackage string
		workDir     string
		keyring     string
		remote      string
		osName      string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "verify [reference]",
		Short: "Verify a published package by building a consumer against it",
		Long: `Verify a published package the way a downstream project would:
check its digest, signature and lock manifest, unpack it, copy its
shared libraries next to the consumer's executables, then configure,
build and test the consumer with LIBTINS_ROOT pointing at the package.

The reference defaults to the libtins recipe under the configured
user and channel.`,
		Example: `  tinsrecipe verify                                          # libtins/<version>@appanywhere/testing
  tinsrecipe verify libtins/3.5@appanywhere/testing --test-package ./test_package
  tinsrecipe verify --archive dist/libtins-3.5-linux.tar.gz --keyring release-keys.asc
  tinsrecipe verify --keyring https://example.org/KEYS --json
  tinsrecipe verify --remote https://packages.example.org/store`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ref, err := a.harnessReference(cmd, args)
			if err != nil {
				return err
			}
			platform, err := detectPlatform(osName)
			if err != nil {
				return err
			}

			if keyring == "" {
				keyring = a.cfg.Verify.Keyring
			}
			var verifier ports.SignatureVerifier
			if keyring != "" {
				v, err := gateways.NewGPGVerifier(ctx, keyring)
				if err != nil {
					return err
				}
				a.logger.Debug("keyring imported", interfaces.F("keys", v.KeyringSize()))
				verifier = v
			}
			if remote == "" {
				remote = a.cfg.Verify.Remote
			}

			if packageDir == "" {
				packageDir = a.cfg.OutputDir
			}
			if testPackage == "" {
				testPackage = a.cfg.Verify.TestPackage
			}
			if workDir == "" {
				workDir = a.cfg.Verify.WorkDir
			}
			if workDir == "" {
				dir, err := os.MkdirTemp("", "tinsrecipe-verify-")
				if err != nil {
					return fmt.Errorf("failed to create work directory: %w", err)
				}
				//nolint:errcheck // Best-effort cleanup of scratch space
				defer os.RemoveAll(dir)
				workDir = dir
			}

			harness := orchestrators.NewVerifyOrchestrator(
				gateways.NewChecksumVerifier(),
				verifier,
				gateways.NewPackager(a.logger),
				gateways.NewArtifactFinder(),
				a.cmake(),
				a.logger,
			).WithFetcher(gateways.NewDownloader(a.logger))

			report, runErr := harness.Verify(ctx, orchestrators.HarnessConfig{
				Reference:      ref,
				Platform:       platform,
				ArchivePath:    archive,
				Remote:         remote,
				PackageDir:     packageDir,
				TestPackageDir: testPackage,
				WorkDir:        workDir,
			})
			if report == nil {
				return runErr
			}

			if err := printReport(cmd, report, jsonOutput); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&archive, "archive", "", "package archive (default <package-dir>/<name>-<version>-<os>.tar.gz)")
	cmd.Flags().StringVar(&packageDir, "package-dir", "", "directory holding published archives (default output_dir)")
	cmd.Flags().StringVar(&testPackage, "test-package", "", "consumer project to build (default verify.test_package)")
	cmd.Flags().StringVar(&workDir, "work-dir", "", "scratch directory (default: temporary)")
	cmd.Flags().StringVar(&keyring, "keyring", "", "public keyring file or URL; enables signature checks")
	cmd.Flags().StringVar(&remote, "remote", "", "package store URL to download the package from")
	cmd.Flags().StringVar(&osName, "os", "", "OS the package was built for (default: host)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the report as JSON")

	return cmd
}

// harnessReference parses the reference argument, or derives it from the
// recipe. The configured user and channel fill a bare name/version.
func (a *app) harnessReference(cmd *cobra.Command, args []string) (entities.PackageReference, error) {
	if len(args) == 1 {
		ref, err := services.ParseReference(args[0])
		if err != nil {
			return ref, err
		}
		if ref.User == "" {
			ref.User, ref.Channel = a.cfg.User, a.cfg.Channel
		}
		return ref, nil
	}

	recipe, err := a.buildOrchestrator(nil, nil).Recipe(cmd.Context(), "libtins")
	if err != nil {
		return entities.PackageReference{}, err
	}
	return recipe.Reference(a.cfg.User, a.cfg.Channel), nil
}

func printReport(cmd *cobra.Command, report *orchestrators.HarnessReport, asJSON bool) error {
	out := cmd.OutOrStdout()

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(out, "Package: %s\nArchive: %s\n\n", report.Reference, report.Archive)
	for _, s := range report.Steps {
		fmt.Fprintf(out, "  %-10s %-8s %s\n", s.Name, s.Status, s.Detail)
	}

	status := "PASSED"
	if !report.Passed {
		status = "FAILED"
	}
	fmt.Fprintf(out, "\nVerification %s\n", status)
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
	"github.com/ochairo/tinsrecipe/internal/domain/interfaces"
	"github.com/ochairo/tinsrecipe/internal/external-adapters/toml"
	"github.com/ochairo/tinsrecipe/internal/external-adapters/yaml"
)

func newResolveCmd(a *app) *cobra.Command {
	var (
		in     inputFlags
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve dependencies, build definitions and packaging rules",
		Long: `Resolve the libtins recipe for a set of options and a target OS.

The result lists the packages to require, the CMake definitions to pass
and the artifact rules used when packaging. It can be written as a lock
document in JSON, YAML or TOML.`,
		Example: `  tinsrecipe resolve                                 # Defaults, host OS
  tinsrecipe resolve --os Windows -o enable_wpa2=False
  tinsrecipe resolve -o libtins:shared=False --format yaml
  tinsrecipe resolve --profile linux-static.toml --output libtins.lock.toml --format toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, platform, err := in.inputs()
			if err != nil {
				return err
			}

			_, res, err := a.buildOrchestrator(nil, nil).Resolve(cmd.Context(), in.recipe, values, platform)
			if err != nil {
				return err
			}

			data, err := encodeResolution(res, format)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0600); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			a.logger.Info("lock written", interfaces.F("path", output))
			return nil
		},
	}

	in.register(cmd)
	cmd.Flags().StringVar(&format, "format", "json", "output format: json, yaml or toml")
	cmd.Flags().StringVar(&output, "output", "", "write to file instead of stdout")

	return cmd
}

func encodeResolution(res entities.Resolution, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON: %w", err)
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		return yaml.EncodeResolution(res)
	case "toml":
		return toml.EncodeResolution(res)
	default:
		return nil, fmt.Errorf("unknown format %q (use json, yaml or toml)", format)
	}
}

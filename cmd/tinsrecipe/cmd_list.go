package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ochairo/tinsrecipe/internal/external-adapters/yaml"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available package recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recipes, err := yaml.NewRecipeRepository(a.cfg.RecipesDir, a.logger).ListRecipes(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Available recipes (%d):\n\n", len(recipes))
			for _, r := range recipes {
				fmt.Fprintf(out, "  %-12s %-8s %s\n", r.Name, r.Version, r.Reference(a.cfg.User, a.cfg.Channel))
				if r.Description != "" {
					fmt.Fprintf(out, "               %s\n", r.Description)
				}
			}
			return nil
		},
	}
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
	"github.com/ochairo/tinsrecipe/internal/domain/services"
)

func newOptionsCmd(a *app) *cobra.Command {
	var recipe string

	cmd := &cobra.Command{
		Use:   "options",
		Short: "List recipe options with their defaults and CMake definitions",
		Example: `  tinsrecipe options
  tinsrecipe options --recipe libtins`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.buildOrchestrator(nil, nil).Recipe(cmd.Context(), recipe)
			if err != nil {
				return err
			}
			defaults, err := services.RecipeDefaults(r)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "OPTION\tDEFAULT\tDEFINITION")
			for _, name := range entities.OptionNames {
				value, _ := defaults.Get(name)
				variable, _ := services.BuildVariableName(name)
				fmt.Fprintf(w, "%s\t%t\t%s\n", name, value, variable)
			}
			fmt.Fprintf(w, "\t\t%s=OFF (fixed)\n", services.BuildTestsVariable)
			fmt.Fprintf(w, "\t\t%s=OFF (fixed)\n", services.BuildExamplesVariable)
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&recipe, "recipe", "libtins", "recipe name")
	return cmd
}

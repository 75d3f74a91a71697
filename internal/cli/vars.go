package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVarCmd(app *App) *cobra.Command {
	var export bool

	cmd := &cobra.Command{
		Use:   "var NAME",
		Short: "Print the value of a computed build variable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, ok := app.Vars.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown variable %q", args[0])
			}

			if export {
				fmt.Fprintf(cmd.OutOrStdout(), "export %s=%q\n", entry.Name, entry.Value)

				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), entry.Value)

			return nil
		},
	}

	cmd.Flags().BoolVar(&export, "export", false, "print in shell export form")

	return cmd
}

func newVarsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "vars",
		Short: "Print every computed build variable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			styles := defaultStyles()

			for _, entry := range app.Vars.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n",
					styles.Name.Render(entry.Name), styles.Value.Render(entry.Value))
			}

			return nil
		},
	}
}

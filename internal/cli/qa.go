package cli

import (
	"github.com/spf13/cobra"

	"github.com/devrig-io/devrig/internal/qa"
	"github.com/devrig-io/devrig/internal/toolbin"
)

func qaRunner(app *App) *qa.Runner {
	return &qa.Runner{
		Env:   app.Sh,
		Log:   app.Log,
		Cfg:   app.Cfg,
		Tools: toolbin.NewInstaller(app.Cfg.Tools.Dir, app.Log),
	}
}

func newTestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "test [package...]",
		Short: "Run the tests with race detection and coverage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return qaRunner(app).Test(cmd.Context(), args...)
		},
	}
}

func newLintCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Run the pinned golangci-lint over the module",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return qaRunner(app).Lint(cmd.Context())
		},
	}
}

func newVendorCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "vendor",
		Short: "Vendor dependencies with the pinned tooling",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return qaRunner(app).Vendor(cmd.Context())
		},
	}
}

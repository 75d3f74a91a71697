// Package cli wires the devrig commands together.
package cli

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/devrig-io/devrig/internal/config"
	"github.com/devrig-io/devrig/internal/project"
	"github.com/devrig-io/devrig/internal/sh"
)

// App carries the shared state every command needs.
type App struct {
	Cfg  *config.Config
	Vars project.Vars
	Sh   *sh.Env
	Log  *log.Logger
}

// NewRootCmd builds the devrig command tree.
func NewRootCmd() *cobra.Command {
	app := &App{}

	var verbose bool

	root := &cobra.Command{
		Use:           "devrig",
		Short:         "Development and release automation for the service",
		Long: `devrig drives the project's development lifecycle: the docker-compose
environment, stamped builds, container images, tests and linting, OpenAPI
stub generation, and changelog releases.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".env")
			if err != nil {
				return err
			}

			if verbose {
				cfg.Verbose = true
			}

			logger := log.New(os.Stderr)
			if cfg.Verbose {
				logger.SetLevel(log.DebugLevel)
			}

			vars, err := project.Resolve(cfg, ".")
			if err != nil {
				return err
			}

			app.Cfg = cfg
			app.Vars = vars
			app.Sh = sh.Default()
			app.Log = logger

			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")

	root.AddCommand(
		newEnvCmd(app),
		newBuildCmd(app),
		newImageCmd(app),
		newTestCmd(app),
		newLintCmd(app),
		newVendorCmd(app),
		newAPICmd(app),
		newReleaseCmd(app),
		newVarCmd(app),
		newVarsCmd(app),
	)

	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	sh.EnableCleanup()

	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		log.New(os.Stderr).Error(err.Error())

		return 1
	}

	return 0
}

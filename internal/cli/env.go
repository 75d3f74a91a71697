package cli

import (
	"github.com/spf13/cobra"

	"github.com/devrig-io/devrig/internal/compose"
)

func newEnvCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Manage the docker-compose development environment",
	}

	service := func() *compose.Service {
		return &compose.Service{
			Env:     app.Sh,
			Log:     app.Log,
			File:    app.Cfg.Compose.File,
			Project: app.Cfg.Compose.Project,
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Seed env files and start the environment detached",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return service().Up(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Stop and remove the environment's containers",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return service().Down(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Recreate the environment from scratch, dropping volumes",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return service().Reset(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "start",
			Short: "Start previously created containers",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return service().Start(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "stop",
			Short: "Stop the containers without removing them",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return service().Stop(cmd.Context())
			},
		},
	)

	return cmd
}

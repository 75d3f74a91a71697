package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/devrig-io/devrig/internal/dockerbuild"
	"github.com/devrig-io/devrig/internal/gobuild"
	"github.com/devrig-io/devrig/internal/task"
)

func newBuildCmd(app *App) *cobra.Command {
	var (
		releaseMode bool
		debugMode   bool
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile the service binary with stamped version info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if releaseMode && debugMode {
				return errors.New("--release and --debug are mutually exclusive")
			}

			mode := gobuild.ModeDev
			if releaseMode {
				mode = gobuild.ModeRelease
			}

			if debugMode {
				mode = gobuild.ModeDebug
			}

			builder := &gobuild.Builder{Env: app.Sh, Log: app.Log, Cfg: app.Cfg, Vars: app.Vars}

			return builder.Build(cmd.Context(), mode, force)
		},
	}

	cmd.Flags().BoolVar(&releaseMode, "release", false, "static, stripped release build")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "unoptimized build for delve")
	cmd.Flags().BoolVar(&force, "force", false, "rebuild even when the binary is up to date")

	return cmd
}

func newImageCmd(app *App) *cobra.Command {
	var debugMode bool

	cmd := &cobra.Command{
		Use:   "image",
		Short: "Build the service's container image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			compiler := &gobuild.Builder{Env: app.Sh, Log: app.Log, Cfg: app.Cfg, Vars: app.Vars}
			builder := &dockerbuild.Builder{Env: app.Sh, Log: app.Log, Cfg: app.Cfg, Vars: app.Vars}

			mode := gobuild.ModeRelease
			if debugMode {
				mode = gobuild.ModeDebug
			}

			// The Dockerfile copies bin/<binary>, so the compile comes first.
			return task.Serial(cmd.Context(),
				func(ctx context.Context) error { return compiler.Build(ctx, mode, false) },
				func(ctx context.Context) error { return builder.Image(ctx, debugMode) },
			)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "build the debug image target")

	return cmd
}

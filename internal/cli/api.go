package cli

import (
	"github.com/spf13/cobra"

	"github.com/devrig-io/devrig/internal/openapi"
)

func newAPICmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api",
		Short: "Validate the OpenAPI descriptor and generate server stubs",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "validate",
			Short: "Check the OpenAPI descriptor's structure",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				doc, err := openapi.Validate(app.Cfg.API.Spec)
				if err != nil {
					return err
				}

				app.Log.Info("descriptor is valid",
					"title", doc.Info.Title, "version", doc.Info.Version, "paths", len(doc.Paths))

				return nil
			},
		},
		&cobra.Command{
			Use:   "generate",
			Short: "Generate server stubs via the containerized generator",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				gen := &openapi.Generator{Env: app.Sh, Log: app.Log, Cfg: app.Cfg}

				return gen.Generate(cmd.Context())
			},
		},
	)

	return cmd
}

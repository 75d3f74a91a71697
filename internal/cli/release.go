package cli

import (
	"github.com/spf13/cobra"

	"github.com/devrig-io/devrig/internal/release"
)

func newReleaseCmd(app *App) *cobra.Command {
	var tag bool

	cmd := &cobra.Command{
		Use:       "release (patch|minor|major)",
		Short:     "Promote the unreleased changelog section to a new version",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"patch", "minor", "major"},
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := release.ParseLevel(args[0])
			if err != nil {
				return err
			}

			if err := release.EnsureClean("."); err != nil {
				return err
			}

			version, err := release.BumpFile(app.Cfg.Release.Changelog, level)
			if err != nil {
				return err
			}

			app.Log.Info("bumped changelog", "level", level.String(), "version", version.String())

			if !tag {
				return nil
			}

			tagger := &release.Tagger{
				Env:         app.Sh,
				Log:         app.Log,
				Changelog:   app.Cfg.Release.Changelog,
				TagPrefix:   app.Cfg.Release.TagPrefix,
				TagOverride: app.Cfg.Release.Tag,
				Sign:        app.Cfg.Release.Sign,
			}

			return tagger.CommitAndTag(cmd.Context(), version)
		},
	}

	cmd.Flags().BoolVar(&tag, "tag", false, "commit the changelog and create the release tag")

	return cmd
}

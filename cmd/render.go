package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"testament/internal/ui"
	"testament/pkg/render"
)

func newRenderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "render [path]",
		Short: "Print the one-line testament",
		Example: `  testament render
  testament render --package-version 1.2.0 --trusted-branch main
  SOURCE_DATE_EPOCH=1623715200 testament render ./vendor/tree`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.resolver().Resolve(a.settings.Path)
			if err != nil {
				return err
			}

			fields := render.Describe(t)
			fields.Rendered = render.RenderWithVersion(t, a.settings.PackageVersion, a.settings.TrustedBranch)
			fmt.Fprintln(cmd.OutOrStdout(), ui.FormatTestament(fields))
			return nil
		},
	}
}

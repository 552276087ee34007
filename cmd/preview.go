package cmd

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/mccw/internal/editor"
	"github.com/oakwood-commons/mccw/internal/preview"
	"github.com/oakwood-commons/mccw/pkg/settings"
)

func newPreviewCmd(opts *rootOptions) *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show a widget instance as columns in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				ctx := cmd.Context()
				s := a.engine.Settings(ctx, opts.instance)
				if width <= 0 {
					width = preview.TerminalWidth()
				}
				out := preview.Render(ctx, a.widget.Title(s), s, a.engine.Items(ctx), preview.Options{
					Width:   width,
					NoColor: settings.NoColorFromContext(ctx),
				})
				_, err := fmt.Fprint(cmd.OutOrStdout(), out)
				return err
			})
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "output width in columns (default: terminal width)")
	return cmd
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the settings of a widget instance interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				ctx := cmd.Context()
				m := editor.New(ctx, a.engine, opts.instance, a.engine.Settings(ctx, opts.instance),
					a.widget.Labels(), a.engine.Items(ctx), settings.NoColorFromContext(ctx))

				final, err := editor.Run(m, tea.WithContext(ctx), tea.WithOutput(os.Stderr))
				if err != nil {
					return err
				}
				if final.Dirty() {
					fmt.Fprintln(cmd.ErrOrStderr(), "unsaved changes discarded")
				}
				return final.Err()
			})
		},
	}
}

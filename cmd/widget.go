package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/mccw/pkg/widget"
)

// withApp builds the app for the duration of run.
func withApp(cmd *cobra.Command, opts *rootOptions, run func(a *app) error) error {
	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return run(a)
}

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var bare bool
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a widget instance as HTML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				args := widget.DefaultArgs()
				if bare {
					args.BeforeWidget, args.AfterWidget = "", ""
				}
				if err := a.engine.Display(cmd.Context(), cmd.OutOrStdout(), opts.instance, args); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&bare, "bare", false, "omit the widget wrapper element")
	return cmd
}

func newFormCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "form",
		Short: "Render the settings form of a widget instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				fmt.Fprintln(cmd.OutOrStdout(), a.engine.Form(cmd.Context(), opts.instance))
				return nil
			})
		},
	}
}

// parseAssignments turns key=value pairs into raw form values.
func parseAssignments(pairs []string) (map[string]string, error) {
	raw := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q, want key=value", p)
		}
		switch k {
		case widget.FieldTitle, widget.FieldColumns, widget.FieldShowCount:
		default:
			return nil, fmt.Errorf("unknown setting %q (want %s, %s or %s)", k, widget.FieldTitle, widget.FieldColumns, widget.FieldShowCount)
		}
		raw[k] = v
	}
	return raw, nil
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	var (
		sets   []string
		keep   bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change the settings of a widget instance",
		Long: `Change the settings of a widget instance the way a submitted settings form
does: values are sanitized, an unparsable column count keeps the previous
value, and showcount is on only when set to 1. Like an unchecked checkbox,
omitting showcount turns it off unless --keep-showcount is given.`,
		Example: "  mccw update --instance sidebar-1 --set title=Topics --set columns=3 --set showcount=1",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app) error {
				ctx := cmd.Context()
				if _, ok := raw[widget.FieldShowCount]; !ok && keep && a.engine.Settings(ctx, opts.instance).ShowCount {
					raw[widget.FieldShowCount] = widget.CheckboxOn
				}
				s, err := a.engine.Update(ctx, opts.instance, raw)
				if err != nil {
					return err
				}
				return writeValue(cmd.OutOrStdout(), output, s)
			})
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "setting to change as key=value (title, columns, showcount)")
	cmd.Flags().BoolVar(&keep, "keep-showcount", false, "keep showcount when it is not set")
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml|json|toml")
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored settings of a widget instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				return a.engine.Delete(cmd.Context(), opts.instance)
			})
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List widget instances and their settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				ctx := cmd.Context()
				ids, err := a.engine.Instances(ctx)
				if err != nil {
					return err
				}
				sort.Strings(ids)
				out := make(map[string]widget.Settings, len(ids))
				for _, id := range ids {
					out[id] = a.engine.Settings(ctx, id)
				}
				return writeValue(cmd.OutOrStdout(), output, map[string]any{"instances": out})
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml|json|toml")
	return cmd
}

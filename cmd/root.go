// Package cmd implements the mccw CLI.
package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/mccw/pkg/logger"
	"github.com/oakwood-commons/mccw/pkg/settings"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	run      *settings.Run
	store    string
	items    string
	filter   string
	instance string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{run: settings.NewCliParams()}

	root := &cobra.Command{
		Use:   settings.CliBinaryName,
		Short: "Render category lists split into balanced columns",
		Long: `mccw renders a list of categories as a titled widget whose items are
split into a configurable number of columns. Settings are stored per widget
instance; categories are read from a JSON, NDJSON, YAML, TOML or Markdown file.`,
		Example: "\n  mccw render --items categories.yaml\n" +
			"  mccw update --instance sidebar-1 --set columns=3 --set showcount=1\n" +
			"  mccw preview --instance sidebar-1 --items categories.md\n" +
			"  mccw serve --store widgets.yaml --items categories.json\n",
		Version:       cliVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if os.Getenv("NO_COLOR") != "" {
				opts.run.NoColor = true
			}
			level := opts.run.MinLogLevel
			if opts.run.IsQuiet && level < 2 {
				level = 2
			}
			lgr := logger.Get(level).WithValues(logger.CommandKey, cmd.Name())
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = logger.WithLogger(ctx, &lgr)
			ctx = settings.IntoContext(ctx, opts.run)
			cmd.SetContext(ctx)
			return nil
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	addRootFlags(root.PersistentFlags(), opts)

	root.AddCommand(
		newRenderCmd(opts),
		newFormCmd(opts),
		newUpdateCmd(opts),
		newDeleteCmd(opts),
		newListCmd(opts),
		newPreviewCmd(opts),
		newEditCmd(opts),
		newServeCmd(opts),
		newAssetsCmd(),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return root
}

func addRootFlags(fs *pflag.FlagSet, opts *rootOptions) {
	fs.Int8Var(&opts.run.MinLogLevel, "log-level", opts.run.MinLogLevel, "minimum log level: -1 debug, 0 info, 1 warn, 2 error")
	fs.BoolVarP(&opts.run.IsQuiet, "quiet", "q", false, "only log errors")
	fs.BoolVar(&opts.run.NoColor, "no-color", false, "disable color output")
	fs.StringVar(&opts.run.ConfigFile, "config-file", "", "path to a YAML config file (default $XDG_CONFIG_HOME/mccw/config.yaml)")
	fs.StringVar(&opts.run.Locale, "locale", opts.run.Locale, "locale of the widget labels (default from config)")
	fs.StringVar(&opts.store, "store", "", "settings store: a .yaml/.toml file or a postgres:// DSN (default from config)")
	fs.StringVar(&opts.items, "items", "", "category file: JSON, NDJSON, YAML, TOML or Markdown (default from config)")
	fs.StringVar(&opts.filter, "filter", "", "CEL predicate over item, e.g. 'item.count > 0'")
	fs.StringVar(&opts.instance, "instance", "default", "widget instance id")
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func cliVersionString() string {
	return fmt.Sprintf("%s %s (%s, commit %s)", settings.CliBinaryName,
		settings.VersionInformation.BuildVersion, runtime.Version(), settings.VersionInformation.Commit)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
		},
	}
}

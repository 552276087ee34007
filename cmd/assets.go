package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/mccw/pkg/host"
)

func newAssetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assets [dir]",
		Short: "Write the front-end stylesheet to dir (default: current directory)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			a := host.Stylesheet()
			dest := filepath.Join(dir, filepath.FromSlash(a.Path))
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return fmt.Errorf("create asset dir: %w", err)
			}
			if err := os.WriteFile(dest, a.Content, 0o644); err != nil { //nolint:gosec // public stylesheet
				return fmt.Errorf("write %s: %w", dest, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (version %s)\n", a.Handle, dest, a.Version)
			return nil
		},
	}
}

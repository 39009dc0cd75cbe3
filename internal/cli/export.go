package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/logbook/internal/config"
	"github.com/sadopc/logbook/internal/export"
	"github.com/sadopc/logbook/internal/store"
)

func newExportCmd(opts *options) *cobra.Command {
	f := &reportFlags{}
	var format, out string
	cmd := &cobra.Command{
		Use:   "export <graph|category>",
		Short: "Export a graph's series or table as CSV or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != "csv" && format != "json" {
				return fmt.Errorf("unknown format %q (csv or json)", format)
			}
			return opts.withStore(func(s *store.Store, cfg *config.Config) error {
				r, err := buildReport(cmd, s, cfg, args[0], f)
				if r == nil {
					return err
				}

				path := out
				if path == "" {
					path = export.FileName(r, format)
				}
				if err := export.Report(r, format, path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
				return nil
			})
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default logbook-<name>-<date>.<format>)")
	return cmd
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/logbook/internal/config"
	"github.com/sadopc/logbook/internal/measure"
	"github.com/sadopc/logbook/internal/store"
)

func newLogCmd(opts *options) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "log <category> [value...]",
		Short: "Record an event, e.g. log water 0,5 l",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(func(s *store.Store, cfg *config.Config) error {
				cat, err := resolveCategory(s, args[0])
				if err != nil {
					return err
				}
				ts, err := parseDateTime(at, cfg.Location)
				if err != nil {
					return err
				}

				value := strings.Join(args[1:], " ")
				if cat.Type.RequiresInput() && strings.TrimSpace(value) == "" {
					if kind, ok := cat.Measure(); ok {
						return fmt.Errorf("%s needs a value (%s)", cat.Name, measure.Examples(kind))
					}
					return fmt.Errorf("%s needs a value", cat.Name)
				}

				e, err := s.LogEvent(*cat, value, ts)
				if err != nil {
					return err
				}

				shown := e.Data
				if kind, ok := cat.Measure(); ok && cat.Type.RequiresMeasure() {
					shown = measure.ToBest(kind, e.Data)
				}
				if shown == "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Logged %s at %s\n", cat.DisplayName(), e.Timestamp.Format("2006-01-02 15:04"))
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Logged %s to %s at %s\n", shown, cat.DisplayName(), e.Timestamp.Format("2006-01-02 15:04"))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Event time, \"YYYY-MM-DD HH:MM\" (default now)")
	return cmd
}

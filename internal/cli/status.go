package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sadopc/logbook/internal/config"
	"github.com/sadopc/logbook/internal/store"
	"github.com/sadopc/logbook/internal/target"
)

func newStatusCmd(opts *options) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show target completion for a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(func(s *store.Store, cfg *config.Config) error {
				day, err := parseDate(date, cfg.Location)
				if err != nil {
					return err
				}
				targets, err := s.ListTargets()
				if err != nil {
					return err
				}

				due := target.ForDate(targets, day, day.AddDate(0, 0, 1))
				out := cmd.OutOrStdout()
				if len(due) == 0 {
					fmt.Fprintf(out, "No targets on %s\n", day.Format("2006-01-02"))
					return nil
				}

				ev := target.NewEvaluator(s, slog.Default())
				fmt.Fprintln(out, "TARGET\tCATEGORY\tVALUE\tEXPECTED\tDONE\tPERIOD")
				for _, t := range due {
					st, err := ev.Status(t, day)
					if err != nil {
						slog.Warn("skipping target", "target", t.ID, "err", err)
						continue
					}
					cat, err := s.GetCategory(t.Category)
					if err != nil {
						return err
					}
					name := t.Name
					if name == "" {
						name = cat.Name
					}
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%.0f%%\t%s - %s\n",
						name, cat.DisplayName(), st.Value, st.Expected, st.Percentage,
						st.PeriodFrom.Format("2006-01-02"), st.PeriodTo.AddDate(0, 0, -1).Format("2006-01-02"))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to evaluate, YYYY-MM-DD (default today)")
	return cmd
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/logbook/internal/config"
	"github.com/sadopc/logbook/internal/measure"
	"github.com/sadopc/logbook/internal/model"
	"github.com/sadopc/logbook/internal/store"
	"github.com/sadopc/logbook/internal/target"
)

func newTargetCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Manage targets",
	}

	var t model.Target
	var categoryRef, periodType string
	var ws int
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a recurring target",
		Long: `Create a recurring target. The schedule is a recurrence rule with a UTC start, e.g.
  "DTSTART:20240101T000000Z\nRRULE:FREQ=WEEKLY;BYDAY=MO,WE,FR"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(func(s *store.Store, cfg *config.Config) error {
				cat, err := resolveCategory(s, categoryRef)
				if err != nil {
					return err
				}
				t.Category = cat.ID
				t.Schedule = strings.ReplaceAll(t.Schedule, `\n`, "\n")
				t.PeriodType = model.AggregationMode(strings.ToLower(periodType))
				if t.WeekStartDay, err = weekStart(cmd, ws, cfg, s); err != nil {
					return err
				}
				if _, err := target.Anchor(t, cfg.Location); err != nil {
					return err
				}

				if cat.Type == model.TypeValueAccumulative {
					kind, _ := cat.Measure()
					goal, err := measure.Normalize(t.Config, kind)
					if err != nil {
						return fmt.Errorf("goal: %w", err)
					}
					t.Config = goal
				}

				if err := s.CreateTarget(&t); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created target for %s (%s)\n", cat.DisplayName(), t.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&t.Name, "name", "", "Target name (default the category name)")
	add.Flags().StringVar(&categoryRef, "category", "", "Category id or name")
	add.Flags().StringVar(&t.Schedule, "schedule", "", "Recurrence rule with DTSTART")
	add.Flags().StringVar(&t.Config, "goal", "", "Amount to reach per period for accumulating categories, e.g. 2 l")
	add.Flags().StringVar(&periodType, "period", string(model.Daily), "Evaluation period: daily, weekly, monthly, custom")
	add.Flags().IntVar(&t.PeriodDays, "days", 0, "Period length in days for custom periods")
	add.Flags().IntVar(&ws, "week-start", 1, "First day of the week, 0 (Sunday) to 6")
	_ = add.MarkFlagRequired("category")
	_ = add.MarkFlagRequired("schedule")

	list := &cobra.Command{
		Use:   "list",
		Short: "List targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(func(s *store.Store, cfg *config.Config) error {
				targets, err := s.ListTargets()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "ID\tNAME\tCATEGORY\tPERIOD\tGOAL\tSCHEDULE")
				for _, t := range targets {
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Category, t.Period(), t.Config,
						strings.ReplaceAll(t.Schedule, "\n", " "))
				}
				return nil
			})
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

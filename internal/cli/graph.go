package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/logbook/internal/aggregate"
	"github.com/sadopc/logbook/internal/config"
	"github.com/sadopc/logbook/internal/measure"
	"github.com/sadopc/logbook/internal/model"
	"github.com/sadopc/logbook/internal/store"
)

func newGraphCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Manage analytics graphs",
	}

	var g model.Graph
	var categoryRef, typ, mode, start string
	var rangeDays, ws int
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(func(s *store.Store, cfg *config.Config) error {
				cat, err := resolveCategory(s, categoryRef)
				if err != nil {
					return err
				}
				g.Category = cat.ID
				if g.Name == "" {
					g.Name = cat.Name
				}
				g.Type = model.GraphType(strings.ToLower(typ))
				switch g.Type {
				case model.GraphBar, model.GraphLine, model.GraphTable:
				default:
					return fmt.Errorf("unknown graph type %q", typ)
				}
				g.Config.AggregationMode = model.AggregationMode(strings.ToLower(mode))
				if !g.Config.AggregationMode.Valid() {
					return fmt.Errorf("unknown aggregation mode %q", mode)
				}
				if g.Config.WeekStartDay, err = weekStart(cmd, ws, cfg, s); err != nil {
					return err
				}

				g.Range = s.DefaultRange()
				if rangeDays > 0 {
					g.Range = time.Duration(rangeDays) * 24 * time.Hour
				}
				if start != "" {
					if g.Config.StartDate, err = parseDate(start, cfg.Location); err != nil {
						return err
					}
				}

				// Reject limits that cannot be read in the category's measure.
				kind, _ := cat.Measure()
				unit, _ := measure.DefaultUnit(kind)
				if _, err := aggregate.LimitsFor(g, *cat, unit); err != nil {
					return err
				}

				if err := s.CreateGraph(&g); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created graph %s (%s)\n", g.Name, g.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&g.Name, "name", "", "Graph name (default the category name)")
	add.Flags().StringVar(&categoryRef, "category", "", "Category id or name")
	add.Flags().StringVar(&typ, "type", string(model.GraphBar), "bar, line or table")
	add.Flags().IntVar(&rangeDays, "range", 0, "Days before the selected day to show (default from settings)")
	add.Flags().StringVar(&g.Config.UpperLimit, "upper", "", "Upper limit, e.g. 2 l")
	add.Flags().StringVar(&g.Config.LowerLimit, "lower", "", "Lower limit, e.g. 1 l")
	add.Flags().StringVar(&mode, "mode", string(model.Daily), "Aggregation: daily, weekly, monthly, custom")
	add.Flags().IntVar(&g.Config.AggregationDays, "days", 0, "Period length in days for custom aggregation")
	add.Flags().StringVar(&start, "start", "", "Start of the first custom period, YYYY-MM-DD")
	add.Flags().IntVar(&ws, "week-start", 1, "First day of the week, 0 (Sunday) to 6")
	add.Flags().IntVar(&g.Order, "order", 0, "Position among graphs")
	_ = add.MarkFlagRequired("category")

	list := &cobra.Command{
		Use:   "list",
		Short: "List graphs in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(func(s *store.Store, cfg *config.Config) error {
				graphs, err := s.ListGraphs()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "ID\tNAME\tTYPE\tCATEGORY\tMODE\tRANGE")
				for _, g := range graphs {
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\t%dd\n", g.ID, g.Name, g.Type, g.Category,
						g.Config.AggregationMode, int(g.Range/(24*time.Hour)))
				}
				return nil
			})
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

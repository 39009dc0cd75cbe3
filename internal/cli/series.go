package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/logbook/internal/aggregate"
	"github.com/sadopc/logbook/internal/config"
	"github.com/sadopc/logbook/internal/export"
	"github.com/sadopc/logbook/internal/model"
	"github.com/sadopc/logbook/internal/store"
)

// reportFlags describe an ad-hoc graph for a category reference.
type reportFlags struct {
	date      string
	mode      string
	days      int
	rangeDays int
	weekStart int
	table     bool
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "Selected day, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.mode, "mode", "daily", "Aggregation for categories: daily, weekly, monthly, custom")
	cmd.Flags().IntVar(&f.days, "days", 0, "Period length in days for custom aggregation")
	cmd.Flags().IntVar(&f.rangeDays, "range", 0, "Days before the selected day to include (default from settings)")
	cmd.Flags().IntVar(&f.weekStart, "week-start", 1, "First day of the week, 0 (Sunday) to 6")
	cmd.Flags().BoolVar(&f.table, "table", false, "Shape a category as a table")
}

// buildReport resolves ref as a stored graph, else as a category viewed
// through a graph made from the flags.
func buildReport(cmd *cobra.Command, s *store.Store, cfg *config.Config, ref string, f *reportFlags) (*aggregate.Report, error) {
	selected, err := parseDate(f.date, cfg.Location)
	if err != nil {
		return nil, err
	}

	g, err := resolveGraph(s, ref)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		if g, err = adHocGraph(cmd, s, cfg, ref, f); err != nil {
			return nil, err
		}
	}
	return aggregate.BuildReport(s, *g, selected)
}

func adHocGraph(cmd *cobra.Command, s *store.Store, cfg *config.Config, ref string, f *reportFlags) (*model.Graph, error) {
	cat, err := resolveCategory(s, ref)
	if err != nil {
		return nil, fmt.Errorf("no graph or category named %q", ref)
	}
	mode := model.AggregationMode(strings.ToLower(f.mode))
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown aggregation mode %q", f.mode)
	}
	ws, err := weekStart(cmd, f.weekStart, cfg, s)
	if err != nil {
		return nil, err
	}
	rng := s.DefaultRange()
	if f.rangeDays > 0 {
		rng = time.Duration(f.rangeDays) * 24 * time.Hour
	}
	typ := model.GraphBar
	if f.table {
		typ = model.GraphTable
	}
	return &model.Graph{
		Name:     cat.Name,
		Type:     typ,
		Category: cat.ID,
		Range:    rng,
		Config: model.GraphConfig{
			AggregationMode: mode,
			WeekStartDay:    ws,
			AggregationDays: f.days,
		},
	}, nil
}

func newSeriesCmd(opts *options) *cobra.Command {
	f := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "series <graph|category>",
		Short: "Print a graph's period totals, entries or table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(func(s *store.Store, cfg *config.Config) error {
				r, err := buildReport(cmd, s, cfg, args[0], f)
				if r == nil {
					return err
				}
				writeReport(cmd.OutOrStdout(), r)
				return err
			})
		},
	}
	f.register(cmd)
	return cmd
}

func writeReport(w io.Writer, r *aggregate.Report) {
	unit := ""
	if r.Unit.Symbol != "" {
		unit = " " + r.Unit.Symbol
	}

	switch {
	case r.Table != nil:
		for _, rec := range export.TableRecords(*r.Table) {
			fmt.Fprintln(w, strings.Join(rec, "\t"))
		}
	case r.Samples != nil:
		fmt.Fprintln(w, "TIME\tVALUE")
		for _, p := range r.Samples.Points {
			fmt.Fprintf(w, "%s\t%s%s%s\n", p.At.Format("2006-01-02 15:04"), formatValue(p.Value), unit, bandNote(r.Limits.Band(p.Value)))
		}
	default:
		fmt.Fprintln(w, "PERIOD\tTOTAL")
		for _, p := range r.Series.Points {
			fmt.Fprintf(w, "%s\t%s%s%s\n", p.Period.Label, formatValue(p.Total), unit, bandNote(r.Limits.Band(p.Total)))
		}
	}
}

func bandNote(b aggregate.Band) string {
	switch b {
	case aggregate.BandUnder:
		return "\tbelow limit"
	case aggregate.BandOver:
		return "\tabove limit"
	}
	return ""
}

package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/sadopc/logbook/internal/config"
	"github.com/sadopc/logbook/internal/model"
	"github.com/sadopc/logbook/internal/period"
	"github.com/sadopc/logbook/internal/store"
)

// parseDate reads YYYY-MM-DD in loc. Empty means today.
func parseDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return period.StartOfDay(time.Now().In(loc)), nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", value)
	}
	return t, nil
}

// parseDateTime reads "YYYY-MM-DD HH:MM" or a bare date in loc. Empty means now.
func parseDateTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Now().In(loc), nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", value, loc); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", value, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q (expected YYYY-MM-DD or \"YYYY-MM-DD HH:MM\")", value)
}

// resolveCategory finds a category by id, then by name ignoring case.
func resolveCategory(s *store.Store, ref string) (*model.Category, error) {
	c, err := s.GetCategory(ref)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	cats, err := s.ListCategories()
	if err != nil {
		return nil, err
	}
	for i := range cats {
		if strings.EqualFold(cats[i].Name, ref) {
			return &cats[i], nil
		}
	}
	return nil, fmt.Errorf("category %q: %w", ref, store.ErrNotFound)
}

func resolveGraph(s *store.Store, ref string) (*model.Graph, error) {
	g, err := s.GetGraph(ref)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	graphs, err := s.ListGraphs()
	if err != nil {
		return nil, err
	}
	for i := range graphs {
		if strings.EqualFold(graphs[i].Name, ref) {
			return &graphs[i], nil
		}
	}
	return nil, fmt.Errorf("graph %q: %w", ref, store.ErrNotFound)
}

// weekStart resolves the first day of the week: the flag when given, then the
// environment, then the stored setting.
func weekStart(cmd *cobra.Command, flag int, cfg *config.Config, s *store.Store) (time.Weekday, error) {
	if cmd.Flags().Changed("week-start") {
		if flag < 0 || flag > 6 {
			return 0, fmt.Errorf("--week-start must be 0 (Sunday) to 6 (Saturday)")
		}
		return time.Weekday(flag), nil
	}
	if cfg.WeekStartSet {
		return cfg.WeekStart, nil
	}
	return s.WeekStart(), nil
}

func formatValue(v float64) string {
	return strings.Replace(decimal.NewFromFloat(v).Round(2).String(), ".", ",", 1)
}

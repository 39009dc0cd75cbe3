package aggregate

import (
	"fmt"
	"time"

	"github.com/sadopc/logbook/internal/measure"
	"github.com/sadopc/logbook/internal/model"
	"github.com/sadopc/logbook/internal/period"
)

// Source supplies the data a graph is built from.
type Source interface {
	GetCategory(id string) (*model.Category, error)
	FindCategoriesByIDs(ids []string) ([]model.Category, error)
	EventsInRange(categoryIDs []string, from, to time.Time) ([]model.Event, error)
}

// Report is a graph resolved for one selected date. Table graphs fill Table;
// the others fill Series, and Samples too when the category's entries are
// plotted one by one.
type Report struct {
	Graph    model.Graph
	Category model.Category
	From     time.Time
	To       time.Time
	Unit     measure.Unit
	Series   Series
	Samples  *Samples
	Table    *Table
	Limits   Limits
}

// PerEvent reports whether a category's graph shows single entries rather
// than period sums.
func PerEvent(cat model.Category) bool {
	return cat.Type == model.TypeValue && !cat.HasChildren()
}

// BuildReport loads a graph's category and events for the window around
// selected and shapes them. Unparseable limits are returned as an error
// alongside a report without limits.
func BuildReport(src Source, g model.Graph, selected time.Time) (*Report, error) {
	cat, err := src.GetCategory(g.Category)
	if err != nil {
		return nil, fmt.Errorf("load category for graph %s: %w", g.ID, err)
	}
	from, to := Window(g, selected)
	events, err := src.EventsInRange(cat.Members(), from, to)
	if err != nil {
		return nil, fmt.Errorf("load events for graph %s: %w", g.ID, err)
	}

	c := PeriodConfig(g)
	r := &Report{Graph: g, Category: *cat, From: from, To: to}

	if g.Type == model.GraphTable {
		var children []model.Category
		if cat.HasChildren() {
			if children, err = src.FindCategoriesByIDs(cat.Children); err != nil {
				return nil, fmt.Errorf("load children of %s: %w", cat.ID, err)
			}
		}
		t := Shape(events, *cat, children, period.Range(c, from, to), c)
		r.Table = &t
		return r, nil
	}

	unit := LimitUnit(g, *cat)
	r.Series = Aggregate(events, *cat, c, from, to, unit)
	r.Unit = r.Series.Unit
	if PerEvent(*cat) {
		s := Plot(events, *cat, unit)
		r.Samples = &s
		r.Unit = s.Unit
	}

	limits, err := LimitsFor(g, *cat, r.Unit)
	if err != nil {
		return r, err
	}
	r.Limits = limits
	return r, nil
}

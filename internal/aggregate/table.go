package aggregate

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/sadopc/logbook/internal/measure"
	"github.com/sadopc/logbook/internal/model"
	"github.com/sadopc/logbook/internal/period"
)

type TableKind string

const (
	SimpleValueMultiple TableKind = "simpleValueMultiple"
	SimpleValueSingle   TableKind = "simpleValueSingle"
	Accumulated         TableKind = "accumulated"
	WithChildren        TableKind = "withChildren"
	Protocol            TableKind = "protocol"
)

// Entry is one preserved event of a value category.
type Entry struct {
	Time    string // HH:MM
	Display string
	Raw     float64
}

type ChildValue struct {
	Name  string
	Value float64
}

// Row is one period of a table. Entries is set only for SimpleValueMultiple,
// Children only for WithChildren.
type Row struct {
	Label    string
	Key      string
	Entries  []Entry
	Children []ChildValue
	Sum      float64
}

type Table struct {
	Kind    TableKind
	Measure measure.Kind
	Rows    []Row
}

// Display formats a raw table value, in best units for measured categories.
func (t Table) Display(v float64) string {
	if t.Measure != "" && t.Kind != Protocol {
		return measure.FormatBase(t.Measure, decimal.NewFromFloat(v))
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Shape turns the events of a category into a table over periods. Children
// win over everything; value categories keep individual entries when any
// period holds more than one; the rest is summed or counted per period.
func Shape(events []model.Event, cat model.Category, children []model.Category, periods []period.Period, c period.Config) Table {
	kind, _ := cat.Measure()
	t := Table{Measure: kind}
	if len(periods) == 0 {
		t.Kind = kindFor(cat)
		return t
	}

	loc := periods[0].From.Location()
	keyOf := func(e model.Event) string {
		return period.Boundaries(c, e.Timestamp.In(loc)).Key
	}

	if cat.Type == model.TypeValue && !cat.HasChildren() {
		return shapeValues(t, events, periods, keyOf)
	}

	counting := cat.Type == model.TypeProtocol || cat.Type == model.TypeTodo
	sums := make(map[string]map[string]float64, len(periods))
	for _, p := range periods {
		sums[p.Key] = map[string]float64{}
	}
	for _, e := range events {
		byCat, ok := sums[keyOf(e)]
		if !ok {
			continue
		}
		inc := 1.0
		if !counting {
			v, ok := numeric(e.Data)
			if !ok {
				continue
			}
			inc = v.InexactFloat64()
		}
		byCat[e.Category] += inc
	}

	t.Kind = kindFor(cat)
	members := append([]model.Category{cat}, children...)
	for _, p := range periods {
		byCat := sums[p.Key]
		row := Row{Label: p.Label, Key: p.Key}
		if t.Kind == WithChildren {
			for _, m := range members {
				if v := byCat[m.ID]; v > 0 {
					row.Children = append(row.Children, ChildValue{Name: m.DisplayName(), Value: v})
					row.Sum += v
				}
			}
		} else {
			row.Sum = byCat[cat.ID]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func kindFor(cat model.Category) TableKind {
	switch {
	case cat.HasChildren():
		return WithChildren
	case cat.Type == model.TypeValue:
		return SimpleValueSingle
	case cat.Type == model.TypeProtocol:
		return Protocol
	}
	return Accumulated
}

func shapeValues(t Table, events []model.Event, periods []period.Period, keyOf func(model.Event) string) Table {
	entries := make(map[string][]Entry, len(periods))
	for _, p := range periods {
		entries[p.Key] = nil
	}
	multiple := false
	for _, e := range events {
		key := keyOf(e)
		list, ok := entries[key]
		if !ok {
			continue
		}
		entry := Entry{Time: e.Timestamp.In(periods[0].From.Location()).Format("15:04"), Display: e.Data}
		if v, ok := numeric(e.Data); ok {
			entry.Raw = v.Round(0).InexactFloat64()
			if t.Measure != "" {
				entry.Display = measure.ToBest(t.Measure, v.Round(0).String())
			}
		} else if q, err := measure.Parse(e.Data); err == nil && q.Kind == t.Measure {
			entry.Raw = q.Base.Round(0).InexactFloat64()
			entry.Display = measure.ToBest(t.Measure, q.Base.Round(0).String())
		}
		entries[key] = append(list, entry)
		if len(entries[key]) > 1 {
			multiple = true
		}
	}

	if multiple {
		t.Kind = SimpleValueMultiple
	} else {
		t.Kind = SimpleValueSingle
	}
	for _, p := range periods {
		list := entries[p.Key]
		row := Row{Label: p.Label, Key: p.Key}
		if multiple {
			row.Entries = list
			for _, e := range list {
				row.Sum += e.Raw
			}
		} else if len(list) > 0 {
			row.Sum = list[0].Raw
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

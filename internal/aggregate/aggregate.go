package aggregate

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sadopc/logbook/internal/measure"
	"github.com/sadopc/logbook/internal/model"
	"github.com/sadopc/logbook/internal/period"
)

// Point is one period of a series. Total is expressed in the series unit.
type Point struct {
	Period period.Period
	Total  float64
}

// Series is a zero-filled, ascending run of period totals sharing one unit.
// Unit is the zero value for categories without a measure.
type Series struct {
	Unit   measure.Unit
	Points []Point
}

// Sample is a single event plotted in the series unit.
type Sample struct {
	At    time.Time
	Value float64
}

type Samples struct {
	Unit   measure.Unit
	Points []Sample
}

// Aggregate buckets events into the periods spanning [from, to] and sums
// their numeric data. Non-numeric data is skipped. For measured categories the
// totals are converted to unit when it names a unit of the right kind, else to
// the best unit of the largest total.
func Aggregate(events []model.Event, cat model.Category, c period.Config, from, to time.Time, unit string) Series {
	periods := period.Range(c, from, to)
	totals := make(map[string]decimal.Decimal, len(periods))
	for _, p := range periods {
		totals[p.Key] = decimal.Zero
	}

	loc := from.Location()
	for _, e := range events {
		key := period.Boundaries(c, e.Timestamp.In(loc)).Key
		sum, ok := totals[key]
		if !ok {
			continue
		}
		v, ok := numeric(e.Data)
		if !ok {
			continue
		}
		totals[key] = sum.Add(v)
	}

	s := Series{Points: make([]Point, 0, len(periods))}
	kind, measured := cat.Measure()
	if measured {
		peak := decimal.Zero
		for _, v := range totals {
			peak = decimal.Max(peak, v)
		}
		s.Unit = displayUnit(kind, unit, peak)
	}

	for _, p := range periods {
		total := totals[p.Key]
		if measured {
			total = measure.FromBase(total, s.Unit)
		}
		s.Points = append(s.Points, Point{Period: p, Total: total.InexactFloat64()})
	}
	slices.SortFunc(s.Points, func(a, b Point) int { return a.Period.From.Compare(b.Period.From) })
	return s
}

// Plot returns one sample per event, for categories whose entries must not be
// summed. All samples share one unit picked like Aggregate does.
func Plot(events []model.Event, cat model.Category, unit string) Samples {
	var out Samples
	values := make([]decimal.Decimal, len(events))
	peak := decimal.Zero
	for i, e := range events {
		v, _ := numeric(e.Data)
		values[i] = v
		peak = decimal.Max(peak, v)
	}

	kind, measured := cat.Measure()
	if measured {
		out.Unit = displayUnit(kind, unit, peak)
	}
	for i, e := range events {
		v := values[i]
		if measured {
			v = measure.FromBase(v, out.Unit)
		}
		out.Points = append(out.Points, Sample{At: e.Timestamp, Value: v.InexactFloat64()})
	}
	return out
}

func displayUnit(kind measure.Kind, name string, peak decimal.Decimal) measure.Unit {
	if name != "" {
		if u, err := measure.LookupUnit(name); err == nil && u.Kind == kind {
			return u
		}
	}
	base, _ := measure.DefaultUnit(kind)
	if !peak.IsPositive() {
		return base
	}
	u, _ := measure.BestUnit(kind, peak)
	return u
}

// numeric mirrors lenient numeric coercion: blank counts as zero.
func numeric(data string) (decimal.Decimal, bool) {
	data = strings.TrimSpace(data)
	if data == "" {
		return decimal.Zero, true
	}
	v, err := decimal.NewFromString(data)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

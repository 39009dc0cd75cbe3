package aggregate

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sadopc/logbook/internal/measure"
	"github.com/sadopc/logbook/internal/model"
	"github.com/sadopc/logbook/internal/period"
)

// PeriodConfig derives the aggregation framing of a graph. Unknown modes
// frame daily.
func PeriodConfig(g model.Graph) period.Config {
	cfg := period.Config{
		Mode:      g.Config.AggregationMode,
		WeekStart: g.Config.WeekStartDay,
		Days:      g.Config.AggregationDays,
		Anchor:    g.Config.StartDate,
	}
	if !cfg.Mode.Valid() {
		cfg.Mode = model.Daily
	}
	return cfg
}

// Window returns the range a graph covers when viewed on selected: Range
// before selected up to the end of selected's day.
func Window(g model.Graph, selected time.Time) (from, to time.Time) {
	to = period.StartOfDay(selected).AddDate(0, 0, 1).Add(-time.Nanosecond)
	return selected.Add(-g.Range), to
}

// LimitUnit is the display unit implied by a graph's limits, upper first.
// It returns "" when no limit carries a unit of the category's kind.
func LimitUnit(g model.Graph, cat model.Category) string {
	kind, ok := cat.Measure()
	if !ok {
		return ""
	}
	for _, text := range []string{g.Config.UpperLimit, g.Config.LowerLimit} {
		if strings.TrimSpace(text) == "" {
			continue
		}
		q, err := measure.Parse(text)
		if err != nil || q.Kind != kind {
			continue
		}
		u, _ := measure.BestUnit(kind, q.Base)
		return u.Name
	}
	return ""
}

type Band int

const (
	BandNone Band = iota
	BandUnder
	BandOK
	BandOver
)

// Limits are a graph's thresholds expressed in a series unit.
type Limits struct {
	Upper *float64
	Lower *float64
}

// LimitsFor parses the graph limits into unit. Unmeasured categories take
// plain numbers.
func LimitsFor(g model.Graph, cat model.Category, unit measure.Unit) (Limits, error) {
	var l Limits
	var err error
	if l.Upper, err = parseLimit(g.Config.UpperLimit, cat, unit); err != nil {
		return Limits{}, fmt.Errorf("upper limit: %w", err)
	}
	if l.Lower, err = parseLimit(g.Config.LowerLimit, cat, unit); err != nil {
		return Limits{}, fmt.Errorf("lower limit: %w", err)
	}
	return l, nil
}

func parseLimit(text string, cat model.Category, unit measure.Unit) (*float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	kind, measured := cat.Measure()
	var v decimal.Decimal
	if measured {
		q, err := measure.Parse(text)
		if err != nil {
			return nil, err
		}
		if q.Kind != kind {
			return nil, fmt.Errorf("%w: expected %s", measure.ErrWrongUnitKind, measure.Examples(kind))
		}
		v = measure.FromBase(q.Base, unit)
	} else {
		n, ok := numeric(strings.Replace(text, ",", ".", 1))
		if !ok {
			return nil, fmt.Errorf("%w: %q", measure.ErrInvalidFormat, text)
		}
		v = n
	}
	f := v.InexactFloat64()
	return &f, nil
}

// Band classifies a value against the limits. With both limits, values below
// the lower one are BandUnder and those above the upper one BandOver.
func (l Limits) Band(v float64) Band {
	switch {
	case l.Upper == nil && l.Lower == nil:
		return BandNone
	case l.Upper != nil && v > *l.Upper:
		return BandOver
	case l.Lower != nil && v < *l.Lower:
		return BandUnder
	}
	return BandOK
}

func (l Limits) Empty() bool {
	return l.Upper == nil && l.Lower == nil
}

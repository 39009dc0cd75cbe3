package target

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sadopc/logbook/internal/measure"
	"github.com/sadopc/logbook/internal/model"
	"github.com/sadopc/logbook/internal/period"
)

// Status is the completion of a target within the period around a date.
type Status struct {
	Value      string
	Percentage float64
	Expected   string
	Color      Color
	PeriodFrom time.Time
	PeriodTo   time.Time
}

// Source supplies the categories and events a target is evaluated against.
type Source interface {
	GetCategory(id string) (*model.Category, error)
	EventsInRange(categoryIDs []string, from, to time.Time) ([]model.Event, error)
}

type Evaluator struct {
	src Source
	log *slog.Logger
}

func NewEvaluator(src Source, log *slog.Logger) *Evaluator {
	if log == nil {
		log = slog.Default()
	}
	return &Evaluator{src: src, log: log}
}

// Status loads the target's category and events and evaluates it for the
// period containing selected.
func (e *Evaluator) Status(t model.Target, selected time.Time) (Status, error) {
	cat, err := e.src.GetCategory(t.Category)
	if err != nil {
		return Status{}, fmt.Errorf("load category for target %s: %w", t.ID, err)
	}
	p := Period(t, selected)
	events, err := e.src.EventsInRange(cat.Members(), p.From, p.To)
	if err != nil {
		return Status{}, fmt.Errorf("load events for target %s: %w", t.ID, err)
	}
	if _, err := parseSchedule(t.Schedule); err != nil {
		e.log.Warn("target schedule unusable", "target", t.ID, "err", err)
	}
	return Evaluate(t, *cat, events, selected), nil
}

// Period frames the target's evaluation period around ref. Custom periods
// without a usable length or schedule start fall back to daily.
func Period(t model.Target, ref time.Time) period.Period {
	c := period.Config{Mode: t.Period(), WeekStart: t.WeekStartDay, Days: t.PeriodDays}
	if c.Mode == model.Custom {
		if anchor, err := Anchor(t, ref.Location()); err == nil {
			c.Anchor = anchor
		}
	}
	return period.Boundaries(c, ref)
}

// Evaluate computes the status of t from the category's events. Events
// outside the target period are ignored.
func Evaluate(t model.Target, cat model.Category, events []model.Event, selected time.Time) Status {
	p := Period(t, selected)
	s := Status{PeriodFrom: p.From, PeriodTo: p.To}

	var inPeriod []model.Event
	for _, ev := range events {
		if p.Contains(ev.Timestamp) {
			inPeriod = append(inPeriod, ev)
		}
	}

	switch cat.Type {
	case model.TypeTodo, model.TypeValue, model.TypeProtocol:
		expected, err := Count(t, p.From, p.To)
		if err != nil {
			expected = 0
		}
		s.Value = strconv.Itoa(len(inPeriod))
		s.Expected = strconv.Itoa(expected)
		s.Percentage = percent(float64(len(inPeriod)), float64(expected))

	case model.TypeValueAccumulative:
		sum := decimal.Zero
		for _, ev := range inPeriod {
			if v, err := decimal.NewFromString(strings.TrimSpace(ev.Data)); err == nil {
				sum = sum.Add(v)
			}
		}
		goal, err := decimal.NewFromString(strings.TrimSpace(t.Config))
		if err != nil {
			goal = decimal.Zero
		}
		s.Percentage = percent(sum.InexactFloat64(), goal.InexactFloat64())
		if cat.Inverted && s.Percentage < 100 {
			s.Percentage = 100 - s.Percentage
		}
		if kind, ok := cat.Measure(); ok {
			s.Value = measure.ToBest(kind, sum.String())
			s.Expected = measure.ToBest(kind, t.Config)
		} else {
			s.Value = sum.String()
			s.Expected = t.Config
		}

	default:
		s.Expected = "0"
		s.Color = Neutral
		return s
	}

	s.Color = ColorFor(cat, s.Percentage)
	return s
}

// percent is value/expected capped at 100. With nothing expected, any
// logged value counts as complete.
func percent(value, expected float64) float64 {
	if expected <= 0 {
		if value > 0 {
			return 100
		}
		return 0
	}
	return math.Min(value/expected*100, 100)
}

// ForDate keeps daily targets scheduled in [from, to) and other targets whose
// own period around from has at least one occurrence, so multi-day targets
// stay visible on unscheduled days.
func ForDate(targets []model.Target, from, to time.Time) []model.Target {
	var out []model.Target
	for _, t := range targets {
		lo, hi := from, to
		if t.Period() != model.Daily {
			p := Period(t, from)
			lo, hi = p.From, p.To
		}
		if n, err := Count(t, lo, hi); err == nil && n >= 1 {
			out = append(out, t)
		}
	}
	return out
}

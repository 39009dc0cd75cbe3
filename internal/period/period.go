package period

import (
	"strconv"
	"time"

	"github.com/sadopc/logbook/internal/model"
)

// Config frames a timeline into periods. Days and Anchor are only used by the
// custom mode; without both it frames daily.
type Config struct {
	Mode      model.AggregationMode
	WeekStart time.Weekday
	Days      int
	Anchor    time.Time
}

// Period is one half-open bucket [From, To).
type Period struct {
	From  time.Time
	To    time.Time
	Key   string
	Label string
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.From) && t.Before(p.To)
}

// Boundaries returns the period containing ref, in ref's location.
func Boundaries(c Config, ref time.Time) Period {
	from, to := c.bounds(ref)
	return Period{From: from, To: to, Key: keyOf(from), Label: c.label(from, to)}
}

func (c Config) bounds(ref time.Time) (time.Time, time.Time) {
	day := startOfDay(ref)

	switch c.Mode {
	case model.Weekly:
		offset := (int(ref.Weekday()) - int(c.WeekStart) + 7) % 7
		from := day.AddDate(0, 0, -offset)
		return from, from.AddDate(0, 0, 7)

	case model.Monthly:
		from := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
		return from, from.AddDate(0, 1, 0)

	case model.Custom:
		if c.Days <= 0 || c.Anchor.IsZero() {
			return day, day.AddDate(0, 0, 1)
		}
		anchor := startOfDay(c.Anchor.In(ref.Location()))
		idx := floorDiv(daysBetween(anchor, day), c.Days)
		from := anchor.AddDate(0, 0, idx*c.Days)
		return from, from.AddDate(0, 0, c.Days)
	}

	return day, day.AddDate(0, 0, 1)
}

// Range walks the periods covering [from, to]: the first one contains from,
// the last one contains the start of to's day.
func Range(c Config, from, to time.Time) []Period {
	first := Boundaries(c, startOfDay(from))
	periods := []Period{first}

	end := startOfDay(to)
	cur := first.To
	for !cur.After(end) {
		p := Boundaries(c, cur)
		if p.From.Equal(periods[len(periods)-1].From) {
			// A degenerate config could stall; step a day instead.
			cur = cur.AddDate(0, 0, 1)
			continue
		}
		periods = append(periods, p)
		cur = p.To
	}
	return periods
}

// StartOfDay truncates t to local midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return startOfDay(t)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b, ignoring DST hour shifts.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua) / (24 * time.Hour))
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func keyOf(from time.Time) string {
	return strconv.FormatInt(from.UnixMilli(), 10)
}

func (c Config) label(from, to time.Time) string {
	switch c.Mode {
	case model.Monthly:
		return from.Format("01.2006")
	case model.Weekly:
		return from.Format("02.01.") + " - " + to.AddDate(0, 0, -1).Format("02.01.")
	case model.Custom:
		if to.Sub(from) > 36*time.Hour {
			return from.Format("02.01.") + " - " + to.AddDate(0, 0, -1).Format("02.01.")
		}
	}
	return from.Format("02.01.")
}

package target

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/sadopc/logbook/internal/model"
)

var ErrInvalidSchedule = errors.New("invalid schedule")

// Count returns how many scheduled occurrences fall in [from, to).
//
// Schedules are written in UTC while from and to are local boundaries, so the
// local wall clock is read as UTC before querying the rule. The rule query
// excludes both bounds; from is moved back one second to include it.
func Count(t model.Target, from, to time.Time) (int, error) {
	set, err := parseSchedule(t.Schedule)
	if err != nil {
		return 0, err
	}
	after := floating(from).Add(-time.Second)
	before := floating(to)
	return len(set.Between(after, before, false)), nil
}

// Anchor returns the schedule's start date as a local midnight in loc. It is
// the origin of custom-length target periods.
func Anchor(t model.Target, loc *time.Location) (time.Time, error) {
	set, err := parseSchedule(t.Schedule)
	if err != nil {
		return time.Time{}, err
	}
	start := set.GetDTStart()
	if start.IsZero() {
		return time.Time{}, fmt.Errorf("%w: no DTSTART", ErrInvalidSchedule)
	}
	start = start.UTC()
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc), nil
}

func parseSchedule(s string) (*rrule.Set, error) {
	set, err := rrule.StrToRRuleSet(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}
	return set, nil
}

// floating keeps the wall clock of t and relabels it as UTC.
func floating(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

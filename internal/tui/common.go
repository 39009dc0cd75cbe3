package tui

import (
	"time"

	"github.com/sadopc/logbook/internal/measure"
	"github.com/sadopc/logbook/internal/model"
	"github.com/sadopc/logbook/internal/period"
)

// viewState represents the currently active view.
type viewState int

const (
	viewToday viewState = iota
	viewAnalytics
	viewSettings
)

var viewNames = []string{"Today", "Analytics", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type eventLoggedMsg struct {
	event *model.Event
	name  string
	kind  measure.Kind // empty for unmeasured categories
}

type eventRemovedMsg struct{}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func today(loc *time.Location) time.Time {
	return period.StartOfDay(time.Now().In(loc))
}

// shiftDay moves a selected day by n days, staying at local midnight.
func shiftDay(d time.Time, n int) time.Time {
	return period.StartOfDay(d.AddDate(0, 0, n))
}

func formatDay(d time.Time) string {
	return d.Format("Mon 02.01.2006")
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

package model

import (
	"time"

	"github.com/sadopc/logbook/internal/measure"
)

type CategoryType string

const (
	TypeTodo              CategoryType = "todo"
	TypeValue             CategoryType = "value"
	TypeValueAccumulative CategoryType = "valueAccumulative"
	TypeProtocol          CategoryType = "protocol"
)

func (t CategoryType) Valid() bool {
	switch t {
	case TypeTodo, TypeValue, TypeValueAccumulative, TypeProtocol:
		return true
	}
	return false
}

// RequiresMeasure reports whether entries carry a measured quantity.
func (t CategoryType) RequiresMeasure() bool {
	return t == TypeValue || t == TypeValueAccumulative
}

// RequiresInput reports whether logging an entry needs user input.
func (t CategoryType) RequiresInput() bool {
	return t != TypeTodo
}

// AggregationMode selects the period framing for series and targets.
type AggregationMode string

const (
	Daily   AggregationMode = "daily"
	Weekly  AggregationMode = "weekly"
	Monthly AggregationMode = "monthly"
	Custom  AggregationMode = "custom"
)

func (m AggregationMode) Valid() bool {
	switch m {
	case Daily, Weekly, Monthly, Custom:
		return true
	}
	return false
}

type Category struct {
	ID       string
	Name     string
	Icon     string
	Type     CategoryType
	Config   string // measure kind for measured types, free label otherwise
	Children []string
	Inverted bool
}

// Measure returns the measure kind when Config names one.
func (c Category) Measure() (measure.Kind, bool) {
	return measure.KindOf(c.Config)
}

func (c Category) HasChildren() bool {
	return len(c.Children) > 0
}

// Members returns the ids whose events count for c: its children and itself.
func (c Category) Members() []string {
	ids := make([]string, 0, len(c.Children)+1)
	for _, id := range c.Children {
		if id != c.ID {
			ids = append(ids, id)
		}
	}
	return append(ids, c.ID)
}

// DisplayName joins icon and name.
func (c Category) DisplayName() string {
	if c.Icon == "" {
		return c.Name
	}
	return c.Icon + " " + c.Name
}

type Event struct {
	ID        string
	Category  string
	Timestamp time.Time
	Data      string
}

type Target struct {
	ID           string
	Name         string
	Category     string
	Schedule     string // DTSTART + RRULE, anchored in UTC
	Config       string // goal in base units for valueAccumulative
	PeriodType   AggregationMode
	PeriodDays   int
	WeekStartDay time.Weekday
}

// Period returns the target's period type, defaulting to daily.
func (t Target) Period() AggregationMode {
	if t.PeriodType == "" {
		return Daily
	}
	return t.PeriodType
}

type GraphType string

const (
	GraphBar   GraphType = "bar"
	GraphLine  GraphType = "line"
	GraphTable GraphType = "table"
)

type GraphConfig struct {
	UpperLimit      string
	LowerLimit      string
	AggregationMode AggregationMode
	WeekStartDay    time.Weekday
	AggregationDays int
	StartDate       time.Time
}

// Graph is a saved analytics view over one category.
type Graph struct {
	ID       string
	Name     string
	Type     GraphType
	Category string
	Range    time.Duration // window ending at the selected day
	Config   GraphConfig
	Order    int
}

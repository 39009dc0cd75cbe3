package aggregate

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/sadopc/logbook/internal/measure"
	"github.com/sadopc/logbook/internal/model"
	"github.com/sadopc/logbook/internal/period"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func at(m time.Month, d, h, min int) time.Time {
	return time.Date(2024, m, d, h, min, 0, 0, time.UTC)
}

func ev(cat string, ts time.Time, data string) model.Event {
	return model.Event{ID: ts.Format(time.RFC3339Nano) + cat, Category: cat, Timestamp: ts, Data: data}
}

var (
	water  = model.Category{ID: "water", Name: "Water", Type: model.TypeValueAccumulative, Config: "volume"}
	pulse  = model.Category{ID: "pulse", Name: "Pulse", Type: model.TypeValue, Config: "bpm"}
	weight = model.Category{ID: "weight", Name: "Weight", Type: model.TypeValue, Config: "mass"}
	pills  = model.Category{ID: "pills", Name: "Pills", Type: model.TypeProtocol, Config: "count"}
	count  = model.Category{ID: "steps", Name: "Steps", Type: model.TypeValueAccumulative, Config: "steps"}
)

// ============================================================
// Aggregate
// ============================================================

func TestAggregateWeekly(t *testing.T) {
	events := []model.Event{
		ev("steps", at(1, 15, 9, 0), "100"),
		ev("steps", at(1, 17, 9, 0), "200"),
		ev("steps", at(1, 22, 9, 0), "150"),
		ev("steps", at(1, 24, 9, 0), "250"),
	}
	c := period.Config{Mode: model.Weekly, WeekStart: time.Monday}
	s := Aggregate(events, count, c, day(1, 15), day(1, 28), "")

	if len(s.Points) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(s.Points))
	}
	if s.Points[0].Total != 300 || s.Points[1].Total != 400 {
		t.Fatalf("totals = %v, %v; want 300, 400", s.Points[0].Total, s.Points[1].Total)
	}
	if !s.Points[0].Period.From.Equal(day(1, 15)) || !s.Points[1].Period.From.Equal(day(1, 22)) {
		t.Fatalf("unexpected period starts %s, %s", s.Points[0].Period.From, s.Points[1].Period.From)
	}
}

func TestAggregateZeroFill(t *testing.T) {
	events := []model.Event{ev("steps", at(1, 3, 12, 0), "5")}
	s := Aggregate(events, count, period.Config{Mode: model.Daily}, day(1, 1), day(1, 5), "")
	if len(s.Points) != 5 {
		t.Fatalf("expected 5 days, got %d", len(s.Points))
	}
	for i, p := range s.Points {
		want := 0.0
		if i == 2 {
			want = 5
		}
		if p.Total != want {
			t.Errorf("day %d total = %v, want %v", i+1, p.Total, want)
		}
	}
}

func TestAggregateBoundaryEvent(t *testing.T) {
	// Exactly midnight belongs to the day that starts there.
	events := []model.Event{ev("steps", day(1, 2), "7")}
	s := Aggregate(events, count, period.Config{Mode: model.Daily}, day(1, 1), day(1, 2), "")
	if s.Points[0].Total != 0 || s.Points[1].Total != 7 {
		t.Fatalf("totals = %v, %v", s.Points[0].Total, s.Points[1].Total)
	}
}

func TestAggregateSkipsNonNumeric(t *testing.T) {
	events := []model.Event{
		ev("steps", at(1, 1, 8, 0), "10"),
		ev("steps", at(1, 1, 9, 0), "oops"),
		ev("steps", at(1, 1, 10, 0), "5"),
	}
	s := Aggregate(events, count, period.Config{Mode: model.Daily}, day(1, 1), day(1, 1), "")
	if len(s.Points) != 1 || s.Points[0].Total != 15 {
		t.Fatalf("got %+v", s.Points)
	}
}

func TestAggregateOutsideRangeIgnored(t *testing.T) {
	events := []model.Event{ev("steps", day(2, 10), "99")}
	s := Aggregate(events, count, period.Config{Mode: model.Daily}, day(1, 1), day(1, 2), "")
	for _, p := range s.Points {
		if p.Total != 0 {
			t.Fatalf("event outside range counted: %+v", p)
		}
	}
}

func TestAggregateSharedBestUnit(t *testing.T) {
	events := []model.Event{
		ev("water", at(1, 1, 8, 0), "500"),
		ev("water", at(1, 2, 8, 0), "2500"),
	}
	s := Aggregate(events, water, period.Config{Mode: model.Daily}, day(1, 1), day(1, 2), "")
	if s.Unit.Name != "l" {
		t.Fatalf("unit = %q, want l", s.Unit.Name)
	}
	if s.Points[0].Total != 0.5 || s.Points[1].Total != 2.5 {
		t.Fatalf("totals = %v, %v", s.Points[0].Total, s.Points[1].Total)
	}
}

func TestAggregateExplicitUnit(t *testing.T) {
	events := []model.Event{ev("water", at(1, 1, 8, 0), "2500")}
	s := Aggregate(events, water, period.Config{Mode: model.Daily}, day(1, 1), day(1, 1), "ml")
	if s.Unit.Name != "ml" || s.Points[0].Total != 2500 {
		t.Fatalf("got %s %v", s.Unit.Name, s.Points[0].Total)
	}

	// A unit of the wrong kind is ignored.
	s = Aggregate(events, water, period.Config{Mode: model.Daily}, day(1, 1), day(1, 1), "h")
	if s.Unit.Name != "l" {
		t.Fatalf("unit = %q, want l", s.Unit.Name)
	}
}

func TestAggregateEmptyUsesBaseUnit(t *testing.T) {
	s := Aggregate(nil, water, period.Config{Mode: model.Daily}, day(1, 1), day(1, 3), "")
	if s.Unit.Name != "ml" {
		t.Fatalf("unit = %q, want ml", s.Unit.Name)
	}
	if len(s.Points) != 3 {
		t.Fatalf("expected 3 periods, got %d", len(s.Points))
	}
}

func TestAggregateIdempotent(t *testing.T) {
	events := []model.Event{ev("water", at(1, 1, 8, 0), "750")}
	c := period.Config{Mode: model.Custom, Days: 3, Anchor: day(1, 1)}
	a := Aggregate(events, water, c, day(1, 1), day(1, 10), "")
	b := Aggregate(events, water, c, day(1, 1), day(1, 10), "")
	if len(a.Points) != len(b.Points) {
		t.Fatal("lengths differ")
	}
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			t.Fatalf("point %d differs", i)
		}
	}
}

// ============================================================
// Plot
// ============================================================

func TestPlot(t *testing.T) {
	events := []model.Event{
		ev("weight", at(1, 1, 8, 0), "500"),
		ev("weight", at(1, 2, 8, 0), "72000"),
	}
	s := Plot(events, weight, "")
	if s.Unit.Name != "kg" {
		t.Fatalf("unit = %q", s.Unit.Name)
	}
	if len(s.Points) != 2 || s.Points[0].Value != 0.5 || s.Points[1].Value != 72 {
		t.Fatalf("got %+v", s.Points)
	}
}

// ============================================================
// Shape
// ============================================================

func TestShapeValueMultiple(t *testing.T) {
	events := []model.Event{
		ev("pulse", at(1, 15, 8, 5), "62"),
		ev("pulse", at(1, 15, 20, 30), "71"),
		ev("pulse", at(1, 16, 9, 0), "65"),
	}
	c := period.Config{Mode: model.Daily}
	tbl := Shape(events, pulse, nil, period.Range(c, day(1, 15), day(1, 16)), c)

	if tbl.Kind != SimpleValueMultiple {
		t.Fatalf("kind = %s", tbl.Kind)
	}
	first := tbl.Rows[0]
	if len(first.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(first.Entries))
	}
	if first.Entries[0].Time != "08:05" || first.Entries[0].Display != "62" {
		t.Errorf("entry 0 = %+v", first.Entries[0])
	}
	if first.Entries[1].Time != "20:30" || first.Entries[1].Display != "71" {
		t.Errorf("entry 1 = %+v", first.Entries[1])
	}
	if first.Sum != 133 || first.Label != "15.01." {
		t.Errorf("row = %+v", first)
	}
}

func TestShapeValueSingle(t *testing.T) {
	events := []model.Event{
		ev("weight", at(1, 15, 8, 0), "72500"),
		ev("weight", at(1, 16, 8, 0), "72000"),
	}
	c := period.Config{Mode: model.Daily}
	tbl := Shape(events, weight, nil, period.Range(c, day(1, 15), day(1, 17)), c)

	if tbl.Kind != SimpleValueSingle {
		t.Fatalf("kind = %s", tbl.Kind)
	}
	if tbl.Rows[0].Sum != 72500 || tbl.Rows[2].Sum != 0 {
		t.Fatalf("rows = %+v", tbl.Rows)
	}
	if tbl.Rows[0].Entries != nil {
		t.Fatal("single shape keeps no entries")
	}
	if got := tbl.Display(tbl.Rows[0].Sum); got != "72,5 kg" {
		t.Fatalf("display = %q", got)
	}
}

func TestShapeValueMultipleMeasured(t *testing.T) {
	events := []model.Event{
		ev("weight", at(1, 15, 8, 0), "72500"),
		ev("weight", at(1, 15, 21, 0), "72000"),
	}
	c := period.Config{Mode: model.Daily}
	tbl := Shape(events, weight, nil, period.Range(c, day(1, 15), day(1, 15)), c)
	if tbl.Kind != SimpleValueMultiple {
		t.Fatalf("kind = %s", tbl.Kind)
	}
	if got := tbl.Rows[0].Entries[1].Display; got != "72 kg" {
		t.Fatalf("display = %q", got)
	}
}

func TestShapeAccumulated(t *testing.T) {
	events := []model.Event{
		ev("water", at(1, 15, 8, 0), "250"),
		ev("water", at(1, 15, 9, 0), "500"),
		ev("water", at(1, 16, 9, 0), "1000"),
	}
	c := period.Config{Mode: model.Daily}
	tbl := Shape(events, water, nil, period.Range(c, day(1, 15), day(1, 16)), c)
	if tbl.Kind != Accumulated {
		t.Fatalf("kind = %s", tbl.Kind)
	}
	if tbl.Rows[0].Sum != 750 || tbl.Rows[1].Sum != 1000 {
		t.Fatalf("rows = %+v", tbl.Rows)
	}
	if got := tbl.Display(tbl.Rows[1].Sum); got != "1 L" {
		t.Fatalf("display = %q", got)
	}
}

func TestShapeProtocol(t *testing.T) {
	events := []model.Event{
		ev("pills", at(1, 15, 8, 0), "aspirin"),
		ev("pills", at(1, 15, 20, 0), "aspirin"),
		ev("pills", at(1, 16, 8, 0), ""),
	}
	c := period.Config{Mode: model.Weekly, WeekStart: time.Monday}
	tbl := Shape(events, pills, nil, period.Range(c, day(1, 15), day(1, 28)), c)
	if tbl.Kind != Protocol {
		t.Fatalf("kind = %s", tbl.Kind)
	}
	if len(tbl.Rows) != 2 || tbl.Rows[0].Sum != 3 || tbl.Rows[1].Sum != 0 {
		t.Fatalf("rows = %+v", tbl.Rows)
	}
	if got := tbl.Display(3); got != "3" {
		t.Fatalf("display = %q", got)
	}
}

func TestShapeWithChildren(t *testing.T) {
	drinks := model.Category{ID: "drinks", Name: "Drinks", Type: model.TypeValueAccumulative, Config: "volume",
		Children: []string{"tea", "coffee", "juice"}}
	children := []model.Category{
		{ID: "tea", Name: "Tea", Icon: "T", Type: model.TypeValueAccumulative, Config: "volume"},
		{ID: "coffee", Name: "Coffee", Type: model.TypeValueAccumulative, Config: "volume"},
		{ID: "juice", Name: "Juice", Type: model.TypeValueAccumulative, Config: "volume"},
	}
	events := []model.Event{
		ev("tea", at(1, 15, 8, 0), "250"),
		ev("coffee", at(1, 15, 9, 0), "200"),
		ev("tea", at(1, 15, 15, 0), "250"),
		ev("drinks", at(1, 15, 18, 0), "100"),
	}
	c := period.Config{Mode: model.Daily}
	tbl := Shape(events, drinks, children, period.Range(c, day(1, 15), day(1, 16)), c)

	if tbl.Kind != WithChildren {
		t.Fatalf("kind = %s", tbl.Kind)
	}
	row := tbl.Rows[0]
	want := []ChildValue{{"Drinks", 100}, {"T Tea", 500}, {"Coffee", 200}}
	if len(row.Children) != len(want) {
		t.Fatalf("children = %+v", row.Children)
	}
	for i := range want {
		if row.Children[i] != want[i] {
			t.Errorf("child %d = %+v, want %+v", i, row.Children[i], want[i])
		}
	}
	if row.Sum != 800 {
		t.Errorf("sum = %v", row.Sum)
	}
	if len(tbl.Rows[1].Children) != 0 || tbl.Rows[1].Sum != 0 {
		t.Errorf("empty day = %+v", tbl.Rows[1])
	}
}

func TestShapeChildrenOverrideValueType(t *testing.T) {
	parent := model.Category{ID: "bp", Type: model.TypeValue, Config: "bpm", Children: []string{"pulse"}}
	events := []model.Event{
		ev("pulse", at(1, 15, 8, 0), "60"),
		ev("pulse", at(1, 15, 9, 0), "70"),
	}
	c := period.Config{Mode: model.Daily}
	tbl := Shape(events, parent, []model.Category{pulse}, period.Range(c, day(1, 15), day(1, 15)), c)
	if tbl.Kind != WithChildren {
		t.Fatalf("kind = %s", tbl.Kind)
	}
	if tbl.Rows[0].Sum != 130 {
		t.Fatalf("sum = %v", tbl.Rows[0].Sum)
	}
}

func TestShapeCustomUsesAnchor(t *testing.T) {
	c := period.Config{Mode: model.Custom, Days: 7, Anchor: day(1, 3)}
	events := []model.Event{ev("water", at(1, 9, 8, 0), "300")}
	tbl := Shape(events, water, nil, period.Range(c, day(1, 3), day(1, 16)), c)
	if len(tbl.Rows) != 2 || tbl.Rows[0].Sum != 300 {
		t.Fatalf("rows = %+v", tbl.Rows)
	}
}

// ============================================================
// Graph helpers
// ============================================================

func TestLimitsBand(t *testing.T) {
	g := model.Graph{Config: model.GraphConfig{UpperLimit: "2 l", LowerLimit: "1,5l"}}
	s := Aggregate(nil, water, period.Config{}, day(1, 1), day(1, 1), LimitUnit(g, water))
	if s.Unit.Name != "l" {
		t.Fatalf("limit unit = %q", s.Unit.Name)
	}
	l, err := LimitsFor(g, water, s.Unit)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		v    float64
		want Band
	}{
		{1, BandUnder},
		{1.5, BandOK},
		{2, BandOK},
		{2.1, BandOver},
	}
	for _, tt := range tests {
		if got := l.Band(tt.v); got != tt.want {
			t.Errorf("Band(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
	if (Limits{}).Band(5) != BandNone {
		t.Fatal("no limits should give BandNone")
	}
}

func TestLimitsWrongKind(t *testing.T) {
	g := model.Graph{Config: model.GraphConfig{UpperLimit: "2h"}}
	ml, _ := measure.DefaultUnit(measure.Volume)
	if _, err := LimitsFor(g, water, ml); !errors.Is(err, measure.ErrWrongUnitKind) {
		t.Fatalf("expected wrong unit kind, got %v", err)
	}
}

func TestWindow(t *testing.T) {
	g := model.Graph{Range: 7 * 24 * time.Hour}
	from, to := Window(g, at(1, 15, 12, 0))
	if !from.Equal(at(1, 8, 12, 0)) {
		t.Fatalf("from = %s", from)
	}
	ps := period.Range(PeriodConfig(g), from, to)
	if got := ps[len(ps)-1].From; !got.Equal(day(1, 15)) {
		t.Fatalf("last period = %s", got)
	}
	if len(ps) != 8 {
		t.Fatalf("expected 8 daily periods, got %d", len(ps))
	}
}

// ============================================================
// Reports
// ============================================================

type fakeSource struct {
	cats   map[string]model.Category
	events []model.Event
}

func (f fakeSource) GetCategory(id string) (*model.Category, error) {
	c, ok := f.cats[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &c, nil
}

func (f fakeSource) FindCategoriesByIDs(ids []string) ([]model.Category, error) {
	var out []model.Category
	for _, id := range ids {
		if c, ok := f.cats[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f fakeSource) EventsInRange(ids []string, from, to time.Time) ([]model.Event, error) {
	var out []model.Event
	for _, e := range f.events {
		if slices.Contains(ids, e.Category) && !e.Timestamp.Before(from) && e.Timestamp.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestBuildReportSeriesWithLimits(t *testing.T) {
	water := model.Category{ID: "w", Name: "Water", Type: model.TypeValueAccumulative, Config: "volume"}
	src := fakeSource{
		cats: map[string]model.Category{"w": water},
		events: []model.Event{
			{ID: "1", Category: "w", Timestamp: time.Date(2024, 1, 9, 8, 0, 0, 0, time.UTC), Data: "500"},
			{ID: "2", Category: "w", Timestamp: time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC), Data: "2500"},
			{ID: "3", Category: "w", Timestamp: time.Date(2023, 12, 1, 8, 0, 0, 0, time.UTC), Data: "9000"},
		},
	}
	g := model.Graph{ID: "g", Category: "w", Range: 2 * 24 * time.Hour, Config: model.GraphConfig{UpperLimit: "2 l", LowerLimit: "1000 ml"}}

	r, err := BuildReport(src, g, time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if r.Unit.Name != "l" || r.Samples != nil || r.Table != nil {
		t.Fatalf("unexpected report shape: unit %q samples %v table %v", r.Unit.Name, r.Samples, r.Table)
	}
	if len(r.Series.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(r.Series.Points))
	}
	bands := []Band{BandUnder, BandUnder, BandOver}
	for i, p := range r.Series.Points {
		if got := r.Limits.Band(p.Total); got != bands[i] {
			t.Errorf("point %d (%v): band %d, want %d", i, p.Total, got, bands[i])
		}
	}
	if *r.Limits.Upper != 2 || *r.Limits.Lower != 1 {
		t.Fatalf("limits = %v, %v", *r.Limits.Upper, *r.Limits.Lower)
	}
}

func TestBuildReportPerEventAndTable(t *testing.T) {
	weight := model.Category{ID: "wt", Name: "Weight", Type: model.TypeValue, Config: "mass"}
	src := fakeSource{
		cats: map[string]model.Category{"wt": weight},
		events: []model.Event{
			{ID: "1", Category: "wt", Timestamp: time.Date(2024, 1, 10, 7, 0, 0, 0, time.UTC), Data: "72500"},
			{ID: "2", Category: "wt", Timestamp: time.Date(2024, 1, 10, 19, 0, 0, 0, time.UTC), Data: "73000"},
		},
	}
	selected := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	g := model.Graph{ID: "g", Type: model.GraphLine, Category: "wt", Range: 24 * time.Hour}
	r, err := BuildReport(src, g, selected)
	if err != nil {
		t.Fatal(err)
	}
	if r.Samples == nil || len(r.Samples.Points) != 2 || r.Unit.Name != "kg" {
		t.Fatalf("expected two kg samples, got %+v", r.Samples)
	}

	g.Type = model.GraphTable
	r, err = BuildReport(src, g, selected)
	if err != nil {
		t.Fatal(err)
	}
	if r.Table == nil || r.Table.Kind != SimpleValueMultiple {
		t.Fatalf("expected multiple-value table, got %+v", r.Table)
	}
}

func TestBuildReportErrors(t *testing.T) {
	src := fakeSource{cats: map[string]model.Category{
		"w": {ID: "w", Name: "Water", Type: model.TypeValueAccumulative, Config: "volume"},
	}}
	if _, err := BuildReport(src, model.Graph{Category: "nope"}, time.Now()); err == nil {
		t.Fatal("expected error for missing category")
	}

	r, err := BuildReport(src, model.Graph{Category: "w", Config: model.GraphConfig{UpperLimit: "5 kg"}}, time.Now())
	if !errors.Is(err, measure.ErrWrongUnitKind) {
		t.Fatalf("expected ErrWrongUnitKind, got %v", err)
	}
	if r == nil || !r.Limits.Empty() {
		t.Fatal("expected report without limits")
	}
}

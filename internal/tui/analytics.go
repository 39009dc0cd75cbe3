package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/logbook/internal/aggregate"
	"github.com/sadopc/logbook/internal/export"
	"github.com/sadopc/logbook/internal/model"
	"github.com/sadopc/logbook/internal/store"
)

type analyticsModel struct {
	store  *store.Store
	width  int
	height int

	date   time.Time
	graphs []model.Graph
	cursor int
	report *aggregate.Report
	err    error

	// Aggregation of the per-category graphs shown when none are saved.
	adHocMode model.AggregationMode

	chart barchart.Model
}

func newAnalyticsModel(s *store.Store, loc *time.Location) analyticsModel {
	return analyticsModel{
		store:     s,
		date:      today(loc),
		adHocMode: model.Daily,
		chart:     barchart.New(60, 12),
	}
}

func (r *analyticsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type analyticsDataMsg struct {
	date   time.Time
	graphs []model.Graph
	cursor int
	report *aggregate.Report
	err    error
}

func (r analyticsModel) refresh() tea.Cmd {
	date, cursor := r.date, r.cursor
	return func() tea.Msg {
		return r.fetch(date, cursor)
	}
}

func (r analyticsModel) fetch(date time.Time, cursor int) analyticsDataMsg {
	msg := analyticsDataMsg{date: date}
	graphs, err := r.loadGraphs()
	if err != nil {
		msg.err = err
		return msg
	}
	msg.graphs = graphs
	if len(graphs) == 0 {
		return msg
	}
	msg.cursor = clamp(cursor, 0, len(graphs)-1)
	msg.report, msg.err = aggregate.BuildReport(r.store, graphs[msg.cursor], date)
	return msg
}

// loadGraphs returns the saved graphs, or one bar graph per category over the
// default range when there are none.
func (r analyticsModel) loadGraphs() ([]model.Graph, error) {
	graphs, err := r.store.ListGraphs()
	if err != nil || len(graphs) > 0 {
		return graphs, err
	}
	cats, err := r.store.ListCategories()
	if err != nil {
		return nil, err
	}
	rng, weekStart := r.store.DefaultRange(), r.store.WeekStart()
	for _, c := range cats {
		graphs = append(graphs, model.Graph{
			Name:     c.DisplayName(),
			Type:     model.GraphBar,
			Category: c.ID,
			Range:    rng,
			Config: model.GraphConfig{
				AggregationMode: r.adHocMode,
				WeekStartDay:    weekStart,
			},
		})
	}
	return graphs, nil
}

func (r analyticsModel) setDate(date time.Time) (analyticsModel, tea.Cmd) {
	r.date = date
	return r, r.refresh()
}

func (r analyticsModel) update(msg tea.Msg) (analyticsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case analyticsDataMsg:
		if !msg.date.Equal(r.date) {
			return r, nil
		}
		r.graphs = msg.graphs
		r.cursor = msg.cursor
		r.report = msg.report
		r.err = msg.err
		r.buildChart()
		if msg.err != nil {
			return r, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Error: %v", msg.err), isError: true}
			}
		}
		return r, nil

	case eventLoggedMsg, eventRemovedMsg:
		return r, r.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if r.cursor > 0 {
				r.cursor--
				return r, r.refresh()
			}
		case key.Matches(msg, keys.Down):
			if r.cursor < len(r.graphs)-1 {
				r.cursor++
				return r, r.refresh()
			}
		case key.Matches(msg, keys.Mode):
			return r.cycleMode()
		}
	}
	return r, nil
}

// nextMode steps daily, weekly, monthly and, when the graph has a day count,
// custom periods.
func nextMode(m model.AggregationMode, days int) model.AggregationMode {
	switch m {
	case model.Daily:
		return model.Weekly
	case model.Weekly:
		return model.Monthly
	case model.Monthly:
		if days > 0 {
			return model.Custom
		}
	}
	return model.Daily
}

// cycleMode switches the aggregation of the selected graph. Saved graphs keep
// the new mode.
func (r analyticsModel) cycleMode() (analyticsModel, tea.Cmd) {
	if r.cursor >= len(r.graphs) {
		return r, nil
	}
	g := r.graphs[r.cursor]
	mode := nextMode(g.Config.AggregationMode, g.Config.AggregationDays)
	if g.ID == "" {
		r.adHocMode = mode
		return r, r.refresh()
	}
	g.Config.AggregationMode = mode
	if err := r.store.UpdateGraph(&g); err != nil {
		return r, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	return r, r.refresh()
}

func limitBar(label string, v float64, l aggregate.Limits) barchart.BarData {
	style := lipgloss.NewStyle().Foreground(bandColor(l, l.Band(v)))
	return barchart.BarData{
		Label:  label,
		Values: []barchart.BarValue{{Name: label, Value: v, Style: style}},
	}
}

func (r *analyticsModel) buildChart() {
	chartWidth := max(r.width-8, 20)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)
	if r.report == nil || r.report.Table != nil {
		return
	}

	var bars []barchart.BarData
	if s := r.report.Samples; s != nil {
		for _, p := range s.Points {
			bars = append(bars, limitBar(p.At.Format("02.01. 15:04"), p.Value, r.report.Limits))
		}
	} else {
		for _, p := range r.report.Series.Points {
			bars = append(bars, limitBar(p.Period.Label, p.Total, r.report.Limits))
		}
	}
	if len(bars) == 0 {
		return
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r analyticsModel) view() string {
	w := r.width - 4

	if len(r.graphs) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Analytics"),
			"",
			mutedStyle.Render("Nothing to show. Create a category with: logbook category add --name <name>"),
		))
	}

	g := r.graphs[r.cursor]
	mode := string(g.Config.AggregationMode)
	if g.Config.AggregationMode == model.Custom {
		mode = fmt.Sprintf("every %d days", g.Config.AggregationDays)
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render(g.Name), "  ",
		activeTabStyle.Render(mode), "  ",
		mutedStyle.Render(r.windowLabel()),
	)

	var body string
	switch {
	case r.report == nil:
		body = mutedStyle.Render("  No data")
	case r.report.Table != nil:
		body = renderTable(*r.report.Table, w)
	default:
		body = lipgloss.JoinVertical(lipgloss.Left, r.chart.View(), "", r.renderLegend())
	}

	nav := mutedStyle.Render("  ↑/↓: graph  ←/→: day  m: aggregation  e: export")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", body, "", r.renderGraphList(), "", nav,
		),
	)
}

func (r analyticsModel) windowLabel() string {
	if r.report == nil {
		return ""
	}
	return fmt.Sprintf("%s - %s", r.report.From.Format("02.01."), r.report.To.AddDate(0, 0, -1).Format("02.01.2006"))
}

func (r analyticsModel) renderLegend() string {
	var items []string
	if u := r.report.Unit; u.Symbol != "" {
		items = append(items, mutedStyle.Render("unit "+u.Symbol))
	}
	l := r.report.Limits
	if l.Lower != nil {
		items = append(items, accentStyle.Render(fmt.Sprintf("lower %s", formatFloat(*l.Lower))))
	}
	if l.Upper != nil {
		items = append(items, accentStyle.Render(fmt.Sprintf("upper %s", formatFloat(*l.Upper))))
	}
	if len(items) == 0 {
		return ""
	}
	return "  " + strings.Join(items, "  ")
}

func (r analyticsModel) renderGraphList() string {
	var rows []string
	for i, g := range r.graphs {
		cursor := "  "
		style := normalItemStyle
		if i == r.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+g.Name))
	}
	return strings.Join(rows, "\n")
}

// renderTable lays the records of a table graph out in padded columns.
func renderTable(t aggregate.Table, w int) string {
	records := export.TableRecords(t)
	if len(records) <= 1 {
		return mutedStyle.Render("  No data for this period")
	}

	widths := make([]int, len(records[0]))
	for _, rec := range records {
		for i, cell := range rec {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var rows []string
	for n, rec := range records {
		cells := make([]string, len(rec))
		for i, cell := range rec {
			cells[i] = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		}
		line := "  " + strings.Join(cells, "  ")
		if n == 0 {
			rows = append(rows, mutedStyle.Render(line))
			rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, lipgloss.Width(line)))))
			continue
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

func formatFloat(v float64) string {
	return strings.Replace(fmt.Sprintf("%g", v), ".", ",", 1)
}

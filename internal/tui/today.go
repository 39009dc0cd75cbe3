package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/sadopc/logbook/internal/measure"
	"github.com/sadopc/logbook/internal/model"
	"github.com/sadopc/logbook/internal/store"
	"github.com/sadopc/logbook/internal/target"
)

type targetRow struct {
	target   model.Target
	category model.Category
	status   target.Status
}

type todayModel struct {
	store  *store.Store
	loc    *time.Location
	width  int
	height int

	date       time.Time
	categories []model.Category
	targets    []targetRow
	events     []model.Event
	cursor     int

	// Value entry form
	formActive bool
	form       *huh.Form
	input      *string // survives value copies
	logging    model.Category
}

func newTodayModel(s *store.Store, loc *time.Location) todayModel {
	input := ""
	return todayModel{
		store: s,
		loc:   loc,
		date:  today(loc),
		input: &input,
	}
}

func (d todayModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *todayModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type todayDataMsg struct {
	date       time.Time
	categories []model.Category
	targets    []targetRow
	events     []model.Event
	err        error
}

func (d todayModel) loadData() tea.Cmd {
	date := d.date
	return func() tea.Msg {
		return d.fetch(date)
	}
}

// fetch evaluates the targets due on date and loads the day's events.
func (d todayModel) fetch(date time.Time) todayDataMsg {
	msg := todayDataMsg{date: date}
	cats, err := d.store.ListCategories()
	if err != nil {
		msg.err = err
		return msg
	}
	targets, err := d.store.ListTargets()
	if err != nil {
		msg.err = err
		return msg
	}

	byID := make(map[string]model.Category, len(cats))
	ids := make([]string, 0, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	end := shiftDay(date, 1)
	ev := target.NewEvaluator(d.store, slog.Default())
	for _, t := range target.ForDate(targets, date, end) {
		st, err := ev.Status(t, date)
		if err != nil {
			slog.Warn("skipping target", "target", t.ID, "err", err)
			continue
		}
		msg.targets = append(msg.targets, targetRow{target: t, category: byID[t.Category], status: st})
	}

	msg.categories = cats
	msg.events, msg.err = d.store.EventsInRange(ids, date, end)
	return msg
}

func (d todayModel) setDate(date time.Time) (todayModel, tea.Cmd) {
	d.date = date
	return d, d.loadData()
}

func (d todayModel) update(msg tea.Msg) (todayModel, tea.Cmd) {
	if d.formActive && d.form != nil {
		return d.updateForm(msg)
	}

	switch msg := msg.(type) {
	case todayDataMsg:
		if !msg.date.Equal(d.date) {
			return d, nil
		}
		if msg.err != nil {
			return d, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Error: %v", msg.err), isError: true}
			}
		}
		d.categories = msg.categories
		d.targets = msg.targets
		d.events = msg.events
		d.cursor = clamp(d.cursor, 0, max(len(d.categories)-1, 0))
		return d, nil

	case eventLoggedMsg, eventRemovedMsg:
		return d, d.loadData()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, keys.Down):
			if d.cursor < len(d.categories)-1 {
				d.cursor++
			}
		case key.Matches(msg, keys.Log):
			return d.startLog()
		case key.Matches(msg, keys.Undo):
			return d, d.removeLast()
		}
	}
	return d, nil
}

func (d todayModel) selected() (model.Category, bool) {
	if d.cursor < 0 || d.cursor >= len(d.categories) {
		return model.Category{}, false
	}
	return d.categories[d.cursor], true
}

// startLog logs todo categories right away and asks for a value otherwise.
func (d todayModel) startLog() (todayModel, tea.Cmd) {
	cat, ok := d.selected()
	if !ok {
		return d, func() tea.Msg {
			return statusMsg{text: "No categories yet. Create one with: logbook category add --name <name>", isError: true}
		}
	}
	if !cat.Type.RequiresInput() {
		return d, d.logCmd(cat, "")
	}

	*d.input = ""
	d.logging = cat
	hint := "Value"
	if kind, ok := cat.Measure(); ok {
		hint = "Amount in " + measure.Examples(kind)
	}
	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(cat.DisplayName()).
				Description(hint).
				Value(d.input).
				Validate(func(s string) error { return validateInput(cat, s) }),
		),
	).WithShowHelp(true).WithShowErrors(true)
	d.formActive = true
	return d, d.form.Init()
}

// validateInput rejects empty input and, for measured categories, input that
// does not read as a quantity of the category's measure.
func validateInput(cat model.Category, s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("a value is required")
	}
	if kind, ok := cat.Measure(); ok && cat.Type.RequiresMeasure() {
		return measure.Validate(s, kind)
	}
	return nil
}

func (d todayModel) updateForm(msg tea.Msg) (todayModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			d.formActive = false
			d.form = nil
			return d, nil
		}
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	if d.form.State == huh.StateCompleted {
		d.formActive = false
		d.form = nil
		return d, d.logCmd(d.logging, *d.input)
	}
	return d, cmd
}

// logTime places an entry on the selected day at the current clock time.
func logTime(day, now time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), now.Hour(), now.Minute(), now.Second(), 0, day.Location())
}

func (d todayModel) logCmd(cat model.Category, input string) tea.Cmd {
	at := logTime(d.date, time.Now().In(d.loc))
	return func() tea.Msg {
		e, err := d.store.LogEvent(cat, input, at)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		kind, _ := cat.Measure()
		return eventLoggedMsg{event: e, name: cat.DisplayName(), kind: kind}
	}
}

// removeLast deletes the selected category's latest event of the day.
func (d todayModel) removeLast() tea.Cmd {
	cat, ok := d.selected()
	if !ok {
		return nil
	}
	var last *model.Event
	for i := range d.events {
		if d.events[i].Category == cat.ID {
			last = &d.events[i]
		}
	}
	if last == nil {
		return func() tea.Msg {
			return statusMsg{text: "Nothing logged for " + cat.Name + " on this day"}
		}
	}
	id := last.ID
	return func() tea.Msg {
		if err := d.store.DeleteEvent(id); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return eventRemovedMsg{}
	}
}

func (d todayModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render(formatDay(d.date)), "  ",
		mutedStyle.Render("←/→ change day  t: today"),
	)

	bottom := d.renderCategoriesPanel(contentWidth)
	if d.formActive && d.form != nil {
		bottom = activePanelStyle.Width(contentWidth).Render(d.form.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(header),
		d.renderTargetsPanel(contentWidth),
		bottom,
	)
}

func (d todayModel) renderTargetsPanel(w int) string {
	title := titleStyle.Render("Targets")
	if len(d.targets) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No targets on this day"),
		))
	}

	barWidth := clamp(w-60, 10, 30)
	rows := []string{title}
	for _, r := range d.targets {
		color := lipgloss.Color(r.status.Color.Hex)
		dot := lipgloss.NewStyle().Foreground(color).Render("●")
		name := r.target.Name
		if name == "" {
			name = r.category.DisplayName()
		}
		row := fmt.Sprintf("  %s %-20s %s %4.0f%%  %s / %s",
			dot,
			truncate(name, 20),
			progressBar(r.status.Percentage, barWidth, color),
			r.status.Percentage,
			r.status.Value,
			r.status.Expected,
		)
		rows = append(rows, row)
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d todayModel) renderCategoriesPanel(w int) string {
	title := titleStyle.Render("Log")
	if len(d.categories) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No categories yet"),
		))
	}

	rows := []string{title}
	for i, c := range d.categories {
		cursor := "  "
		style := normalItemStyle
		if i == d.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		line := style.Render(fmt.Sprintf("%s%-24s", cursor, truncate(c.DisplayName(), 24)))
		if s := daySummary(c, d.events); s != "" {
			line += " " + highlightStyle.Render(s)
		}
		rows = append(rows, line)
	}
	rows = append(rows, "", mutedStyle.Render("  enter: log  x: remove last"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// daySummary describes what was logged for c: a count for todo and protocol
// categories, the total for accumulating ones and the latest value otherwise.
func daySummary(c model.Category, events []model.Event) string {
	var own []model.Event
	for _, e := range events {
		if e.Category == c.ID {
			own = append(own, e)
		}
	}
	if len(own) == 0 {
		return ""
	}

	kind, measured := c.Measure()
	switch c.Type {
	case model.TypeValueAccumulative:
		sum := decimal.Zero
		for _, e := range own {
			if v, err := decimal.NewFromString(e.Data); err == nil {
				sum = sum.Add(v)
			}
		}
		if measured {
			return measure.FormatBase(kind, sum)
		}
		return sum.String()
	case model.TypeValue:
		last := own[len(own)-1].Data
		if measured {
			return measure.ToBest(kind, last)
		}
		return last
	}
	return fmt.Sprintf("%d×", len(own))
}

func progressBar(pct float64, width int, color lipgloss.Color) string {
	filled := clamp(int(pct/100*float64(width)+0.5), 0, width)
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

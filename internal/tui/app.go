package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/logbook/internal/export"
	"github.com/sadopc/logbook/internal/measure"
	"github.com/sadopc/logbook/internal/store"
)

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	loc    *time.Location
	width  int
	height int

	date          time.Time
	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	today     todayModel
	analytics analyticsModel
	settings  settingsModel

	help    help.Model
	status  string
	isError bool
}

func NewApp(s *store.Store, loc *time.Location) App {
	if loc == nil {
		loc = time.Local
	}
	h := help.New()
	h.ShowAll = false

	return App{
		store:      s,
		loc:        loc,
		date:       today(loc),
		activeView: viewToday,
		today:      newTodayModel(s, loc),
		analytics:  newAnalyticsModel(s, loc),
		settings:   newSettingsModel(s),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return a.today.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.today.setSize(a.width, contentHeight)
		a.analytics.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.analytics.buildChart()
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewToday
			return a, a.today.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewAnalytics
			return a, a.analytics.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

		if a.activeView != viewSettings {
			switch {
			case key.Matches(msg, keys.PrevDay):
				return a.setDate(shiftDay(a.date, -1))
			case key.Matches(msg, keys.NextDay):
				return a.setDate(shiftDay(a.date, 1))
			case key.Matches(msg, keys.Today):
				return a.setDate(today(a.loc))
			}
		}
		if a.activeView == viewAnalytics && key.Matches(msg, keys.Export) {
			if a.analytics.report == nil {
				a.status, a.isError = "Nothing to export", true
				return a, nil
			}
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		}

	case statusMsg:
		a.status, a.isError = msg.text, msg.isError
		return a, nil

	case eventLoggedMsg:
		a.status, a.isError = loggedText(msg), false
		return a.broadcast(msg)

	case eventRemovedMsg:
		a.status, a.isError = "Entry removed", false
		return a.broadcast(msg)

	case exportDoneMsg:
		a.status, a.isError = "Exported to "+msg.path, false
		a.exportPicking = false
		return a, nil

	case todayDataMsg:
		var cmd tea.Cmd
		a.today, cmd = a.today.update(msg)
		return a, cmd

	case analyticsDataMsg:
		var cmd tea.Cmd
		a.analytics, cmd = a.analytics.update(msg)
		return a, cmd

	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

func loggedText(msg eventLoggedMsg) string {
	when := msg.event.Timestamp.Format("02.01. 15:04")
	if msg.event.Data == "" {
		return fmt.Sprintf("Logged %s at %s", msg.name, when)
	}
	value := msg.event.Data
	if msg.kind != "" {
		value = measure.ToBest(msg.kind, value)
	}
	return fmt.Sprintf("Logged %s to %s at %s", value, msg.name, when)
}

// setDate moves both day-based views to date.
func (a App) setDate(date time.Time) (tea.Model, tea.Cmd) {
	a.date = date
	var c1, c2 tea.Cmd
	a.today, c1 = a.today.setDate(date)
	a.analytics, c2 = a.analytics.setDate(date)
	return a, tea.Batch(c1, c2)
}

// broadcast hands a data change to every view that shows entries.
func (a App) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	var c1, c2 tea.Cmd
	a.today, c1 = a.today.update(msg)
	a.analytics, c2 = a.analytics.update(msg)
	return a, tea.Batch(c1, c2)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewToday:
		a.today, cmd = a.today.update(msg)
	case viewAnalytics:
		a.analytics, cmd = a.analytics.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewToday:
		return a.today.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewToday:
		return a.today.loadData()
	case viewAnalytics:
		return a.analytics.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewToday:
		content = a.today.view()
	case viewAnalytics:
		content = a.analytics.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := max(a.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("logbook")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	left := footerStyle.Render(a.help.View(keys))

	right := ""
	if a.status != "" {
		style := mutedStyle
		if a.isError {
			style = errorStyle
		}
		right = style.Render(" " + a.status)
	}

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON"}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export " + a.analytics.report.Graph.Name), ""}
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the analytics report on screen to the home directory.
func (a App) doExport(format int) tea.Cmd {
	rep := a.analytics.report
	if rep == nil {
		return nil
	}
	return func() tea.Msg {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		ext := strings.ToLower(exportFormats[format])
		path := filepath.Join(home, export.FileName(rep, ext))
		if err := export.Report(rep, ext, path); err != nil {
			return statusMsg{text: fmt.Sprintf("%s error: %v", exportFormats[format], err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

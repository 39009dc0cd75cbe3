package tui

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/logbook/internal/store"
)

const oneDay = 24 * time.Hour

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	weekStart    *int
	defaultRange *string
}

func newSettingsModel(s *store.Store) settingsModel {
	ws, dr := int(time.Monday), ""
	return settingsModel{
		store:        s,
		weekStart:    &ws,
		defaultRange: &dr,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) {
			return s.showForm()
		}
	}
	return s, nil
}

func weekdayOptions() []huh.Option[int] {
	opts := make([]huh.Option[int], 0, 7)
	for i := range 7 {
		d := time.Weekday((i + 1) % 7) // Monday first
		opts = append(opts, huh.NewOption(d.String(), int(d)))
	}
	return opts
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.weekStart = int(s.store.WeekStart())
	*s.defaultRange = strconv.Itoa(int(s.store.DefaultRange() / oneDay))

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().Title("Week starts on").
				Options(weekdayOptions()...).
				Value(s.weekStart),
			huh.NewInput().Title("Default analytics range (days)").
				Value(s.defaultRange).
				Validate(validateDays),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validateDays(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return errors.New("enter a positive number of days")
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		if err := s.saveSettings(); err != nil {
			return s, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
		}
		return s, tea.Batch(s.refresh(), func() tea.Msg {
			return statusMsg{text: "Settings saved"}
		})
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	if err := s.store.SetSetting(store.SettingWeekStart, strconv.Itoa(*s.weekStart)); err != nil {
		return err
	}
	days, err := strconv.Atoi(*s.defaultRange)
	if err != nil {
		return err
	}
	return s.store.SetSetting(store.SettingDefaultRange, strconv.FormatInt(int64(time.Duration(days)*oneDay/time.Second), 10))
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	rows := []string{title, ""}
	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.SettingWeekStart:
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 6 {
			return time.Weekday(n).String()
		}
	case store.SettingDefaultRange:
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			days := int64(time.Duration(secs) * time.Second / oneDay)
			if days == 1 {
				return "1 day"
			}
			return fmt.Sprintf("%d days", days)
		}
	}
	return v
}

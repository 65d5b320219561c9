package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/cramr/internal/planner"
	"github.com/sadopc/cramr/internal/study"
)

type settingsModel struct {
	planner *planner.Planner
	now     func() time.Time
	width   int
	height  int

	settings   study.Settings
	mode       planner.Mode
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	daysPerWeek    *string
	hoursPerDay    *string
	subjectsPerDay *string
	completionDays *string
	startDate      *string
	importMode     *string
	importance     []*int
}

func newSettingsModel(p *planner.Planner, now func() time.Time) settingsModel {
	dw, hd, sd, cd, st, im := "", "", "", "", "", ""
	imp := make([]*int, len(study.Subjects))
	for i := range imp {
		v := study.DefaultImportance
		imp[i] = &v
	}
	return settingsModel{
		planner:        p,
		now:            now,
		settings:       p.Settings(),
		mode:           p.Mode(),
		daysPerWeek:    &dw,
		hoursPerDay:    &hd,
		subjectsPerDay: &sd,
		completionDays: &cd,
		startDate:      &st,
		importMode:     &im,
		importance:     imp,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings study.Settings
	mode     planner.Mode
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return settingsDataMsg{settings: s.planner.Settings(), mode: s.planner.Mode()}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		s.mode = msg.mode
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter):
			return s.showForm()
		}
	}
	return s, nil
}

func rangeValidator(r study.Range) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.New("enter a whole number")
		}
		if !r.Contains(n) {
			return fmt.Errorf("must be between %d and %d", r.Min, r.Max)
		}
		return nil
	}
}

func validateDate(v string) error {
	if _, err := time.ParseInLocation(study.DateLayout, strings.TrimSpace(v), time.Local); err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	cur := s.settings
	*s.daysPerWeek = strconv.Itoa(cur.DaysPerWeek)
	*s.hoursPerDay = strconv.Itoa(cur.HoursPerDay)
	*s.subjectsPerDay = strconv.Itoa(cur.SubjectsPerDay)
	*s.completionDays = strconv.Itoa(cur.CompletionDays)
	*s.startDate = study.FormatDate(cur.StartDate)
	*s.importMode = s.mode.String()
	for i, subj := range study.Subjects {
		*s.importance[i] = cur.SubjectImportance[subj]
	}

	today := study.DayOf(s.now())
	stars := make([]huh.Option[int], 0, study.ImportanceRange.Max)
	for v := study.ImportanceRange.Min; v <= study.ImportanceRange.Max; v++ {
		stars = append(stars, huh.NewOption(strings.Repeat("★", v), v))
	}
	var importance []huh.Field
	for i, subj := range study.Subjects {
		importance = append(importance,
			huh.NewSelect[int]().Title(subj).Options(stars...).Inline(true).Value(s.importance[i]))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Days per week").Value(s.daysPerWeek).Validate(rangeValidator(study.DaysPerWeekRange)),
			huh.NewInput().Title("Hours per day").Value(s.hoursPerDay).Validate(rangeValidator(study.HoursPerDayRange)),
			huh.NewInput().Title("Subjects per day").Value(s.subjectsPerDay).Validate(rangeValidator(study.SubjectsPerDayRange)),
			huh.NewInput().Title("Complete within (days)").Value(s.completionDays).Validate(rangeValidator(study.CompletionDaysRange)),
			huh.NewInput().Title("Start date").
				Description(fmt.Sprintf("today %s, tomorrow %s", study.FormatDate(today), study.FormatDate(today.AddDate(0, 0, 1)))).
				Value(s.startDate).Validate(validateDate),
			huh.NewSelect[string]().Title("New imports").
				Options(
					huh.NewOption("Append to the current plan", planner.ModeAppend.String()),
					huh.NewOption("Replace the current plan", planner.ModeReplace.String()),
				).Value(s.importMode),
		).Title("Schedule"),
		huh.NewGroup(importance...).Title("Subject importance"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
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
		return s, s.saveSettings()
	}

	return s, cmd
}

// apply writes the form values onto cfg through the validating setters.
func (s settingsModel) apply(cfg *study.Settings) error {
	ints := []struct {
		raw string
		set func(int) error
	}{
		{*s.daysPerWeek, cfg.SetDaysPerWeek},
		{*s.hoursPerDay, cfg.SetHoursPerDay},
		{*s.subjectsPerDay, cfg.SetSubjectsPerDay},
		{*s.completionDays, cfg.SetCompletionDays},
	}
	for _, f := range ints {
		n, err := strconv.Atoi(strings.TrimSpace(f.raw))
		if err != nil {
			return fmt.Errorf("%q is not a number", f.raw)
		}
		if err := f.set(n); err != nil {
			return err
		}
	}
	start, err := study.ParseDate(*s.startDate)
	if err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	if err := cfg.SetStartDate(start); err != nil {
		return err
	}
	for i, subj := range study.Subjects {
		if err := cfg.SetImportance(subj, *s.importance[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s settingsModel) saveSettings() tea.Cmd {
	return func() tea.Msg {
		if mode, err := planner.ParseMode(*s.importMode); err == nil {
			s.planner.SetMode(mode)
		}
		if err := s.planner.UpdateSettings(s.apply); err != nil {
			if errors.Is(err, study.ErrOutOfRange) || errors.Is(err, study.ErrUnknownSubject) {
				return statusMsg{text: fmt.Sprintf("Settings not saved: %v", err), isError: true}
			}
			return planChangedMsg{err: err}
		}
		return planChangedMsg{text: "Settings saved"}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Study Configuration")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	cfg := s.settings
	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(24).Render(label), highlightStyle.Render(value))
	}

	rows := []string{
		title,
		"",
		row("Days per week", strconv.Itoa(cfg.DaysPerWeek)),
		row("Hours per day", strconv.Itoa(cfg.HoursPerDay)),
		row("Subjects per day", strconv.Itoa(cfg.SubjectsPerDay)),
		row("Complete within", fmt.Sprintf("%d days", cfg.CompletionDays)),
		row("Start date", study.FormatDate(cfg.StartDate)),
		row("New imports", s.mode.String()),
		"",
		subtitleStyle.Render("Subject importance"),
	}
	for _, subj := range study.Subjects {
		v := cfg.SubjectImportance[subj]
		stars := strings.Repeat("★", v) + mutedStyle.Render(strings.Repeat("☆", study.ImportanceRange.Max-v))
		rows = append(rows, fmt.Sprintf("  %s %s",
			subjectStyle(subj).Width(24).Render(subj), warningStyle.Render(stars)))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

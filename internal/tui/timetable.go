package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/cramr/internal/planner"
	"github.com/sadopc/cramr/internal/schedule"
	"github.com/sadopc/cramr/internal/stats"
	"github.com/sadopc/cramr/internal/study"
)

type timetableModel struct {
	planner *planner.Planner
	width   int
	height  int

	tasks    []study.Task
	settings study.Settings

	week      int
	dayCursor int

	// Day agenda state
	agenda       bool
	agendaCursor int

	bar progress.Model
}

func newTimetableModel(p *planner.Planner) timetableModel {
	return timetableModel{
		planner:  p,
		tasks:    p.Tasks(),
		settings: p.Settings(),
		week:     1,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
	}
}

func (t *timetableModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

type timetableDataMsg struct {
	tasks    []study.Task
	settings study.Settings
}

func (t timetableModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return timetableDataMsg{tasks: t.planner.Tasks(), settings: t.planner.Settings()}
	}
}

func toggleCmd(p *planner.Planner, task study.Task) tea.Cmd {
	return func() tea.Msg {
		if err := p.Toggle(task.ID); err != nil {
			return planChangedMsg{err: err}
		}
		verb := "Completed"
		if task.Completed {
			verb = "Reopened"
		}
		return planChangedMsg{text: fmt.Sprintf("%s %s: %s", verb, task.Subject, task.Topic)}
	}
}

func (t timetableModel) dayTasks() []study.Task {
	return schedule.TasksForDay(t.tasks, t.week, t.dayCursor)
}

func (t timetableModel) update(msg tea.Msg) (timetableModel, tea.Cmd) {
	switch msg := msg.(type) {
	case timetableDataMsg:
		t.tasks = msg.tasks
		t.settings = msg.settings
		if maxWeek := schedule.MaxWeek(t.tasks); t.week > maxWeek {
			t.week = maxWeek
		}
		if n := len(t.dayTasks()); t.agendaCursor >= n {
			t.agendaCursor = max(n-1, 0)
		}
		return t, nil

	case tea.KeyMsg:
		if t.agenda {
			return t.updateAgenda(msg)
		}
		switch {
		case key.Matches(msg, keys.PrevWeek):
			if t.week > 1 {
				t.week--
			}
		case key.Matches(msg, keys.NextWeek):
			if t.week < schedule.MaxWeek(t.tasks) {
				t.week++
			}
		case key.Matches(msg, keys.Up):
			if t.dayCursor > 0 {
				t.dayCursor--
			}
		case key.Matches(msg, keys.Down):
			if t.dayCursor < schedule.DaysInWeek-1 {
				t.dayCursor++
			}
		case key.Matches(msg, keys.Enter):
			if len(t.tasks) > 0 {
				t.agenda = true
				t.agendaCursor = 0
			}
		}
	}
	return t, nil
}

func (t timetableModel) updateAgenda(msg tea.KeyMsg) (timetableModel, tea.Cmd) {
	day := t.dayTasks()
	switch {
	case key.Matches(msg, keys.Back):
		t.agenda = false
	case key.Matches(msg, keys.Up):
		if t.agendaCursor > 0 {
			t.agendaCursor--
		}
	case key.Matches(msg, keys.Down):
		if t.agendaCursor < len(day)-1 {
			t.agendaCursor++
		}
	case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
		if t.agendaCursor < len(day) {
			return t, toggleCmd(t.planner, day[t.agendaCursor])
		}
	}
	return t, nil
}

func (t timetableModel) view() string {
	w := t.width - 4

	if len(t.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Timetable"),
			"",
			mutedStyle.Render("No plan yet. Import one from the Import tab (2)."),
		)
		return panelStyle.Width(w).Render(content)
	}

	header := t.renderHeader()
	if t.agenda {
		return lipgloss.JoinVertical(lipgloss.Left, header, t.renderAgenda(w))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, t.renderGrid(w))
}

func (t timetableModel) renderHeader() string {
	maxWeek := schedule.MaxWeek(t.tasks)
	nav := fmt.Sprintf("%s  Week %d of %d  %s",
		mutedStyle.Render("‹"), t.week, maxWeek, mutedStyle.Render("›"))
	pct := stats.OverallPercent(t.tasks)
	done := stats.CompletedCount(t.tasks)
	bar := t.bar.ViewAs(float64(pct) / 100)
	line := fmt.Sprintf("%s   %s %s", titleStyle.Render(nav), bar,
		mutedStyle.Render(fmt.Sprintf("%d%% (%d/%d)", pct, done, len(t.tasks))))
	return headerStyle.Render(line)
}

func (t timetableModel) renderGrid(w int) string {
	slots := max(t.settings.SubjectsPerDay, 1)
	labelW := 16
	cellW := max((w-20-labelW)/slots-1, 8)

	var rows []string
	head := []string{lipgloss.NewStyle().Width(labelW).Render(mutedStyle.Render("Day"))}
	for i := 0; i < slots; i++ {
		head = append(head, cellStyle.Width(cellW).Render(mutedStyle.Render(fmt.Sprintf("Slot %d", i+1))))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, head...))

	for day := 0; day < schedule.DaysInWeek; day++ {
		info := schedule.DayInfo(t.week, day, t.settings)
		label := fmt.Sprintf("%s %s", info.Weekday[:3], info.Label())
		style := cellStyle
		labelStyle := normalItemStyle
		if day == t.dayCursor {
			style = selectedCellStyle
			labelStyle = selectedItemStyle
			label = "> " + label
		} else {
			label = "  " + label
		}

		cols := []string{labelStyle.Width(labelW).Render(label)}
		shown, overflow := schedule.Slots(t.tasks, t.week, day, t.settings)
		for i := 0; i < slots; i++ {
			if i >= len(shown) {
				cols = append(cols, style.Width(cellW).Render(mutedStyle.Render("·")))
				continue
			}
			task := shown[i]
			text := truncate(task.Topic, cellW-4)
			if task.Completed {
				text = doneStyle.Render(text)
			} else {
				text = subjectStyle(task.Subject).Render(text)
			}
			cols = append(cols, style.Width(cellW).Render(checkbox(task.Completed)+" "+text))
		}
		if len(overflow) > 0 {
			cols = append(cols, accentStyle.Render(fmt.Sprintf(" +%d more", len(overflow))))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	}

	rows = append(rows, "", mutedStyle.Render("  ←/→: week  ↑/↓: day  enter: day agenda"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (t timetableModel) renderAgenda(w int) string {
	info := schedule.DayInfo(t.week, t.dayCursor, t.settings)
	title := titleStyle.Render(fmt.Sprintf("%s, %s", info.Weekday, info.Date.Format("2 January 2006")))

	day := t.dayTasks()
	rows := []string{title, ""}
	if len(day) == 0 {
		rows = append(rows, mutedStyle.Render("  Nothing scheduled. Rest day."))
	}
	for i, task := range day {
		cursor := "  "
		style := normalItemStyle
		if i == t.agendaCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		topic := task.Topic
		if task.Completed {
			topic = doneStyle.Render(topic)
		}
		meta := priorityStyle(task.Priority).Render(string(task.Priority))
		if d := formatHours(task.Duration); d != "" {
			meta += mutedStyle.Render("  " + d)
		}
		if i >= t.settings.SubjectsPerDay {
			meta += accentStyle.Render("  overflow")
		}
		rows = append(rows, fmt.Sprintf("%s%s %s %s  %s",
			style.Render(cursor), checkbox(task.Completed),
			subjectStyle(task.Subject).Width(18).Render(task.Subject), topic, meta))
	}
	rows = append(rows, "", mutedStyle.Render("  space: toggle done  esc: back to week"))
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

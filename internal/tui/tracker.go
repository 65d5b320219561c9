package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/cramr/internal/planner"
	"github.com/sadopc/cramr/internal/study"
)

type taskFilter int

const (
	filterAll taskFilter = iota
	filterPending
	filterCompleted
)

var filterNames = []string{"All", "Pending", "Completed"}

type trackerModel struct {
	planner *planner.Planner
	width   int
	height  int

	tasks  []study.Task
	search textinput.Model
	filter taskFilter
	cursor int
	offset int
}

func newTrackerModel(p *planner.Planner) trackerModel {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search subjects or topics"
	ti.CharLimit = 128
	ti.Width = 40
	return trackerModel{
		planner: p,
		tasks:   p.Tasks(),
		search:  ti,
	}
}

func (m *trackerModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m trackerModel) capturing() bool {
	return m.search.Focused()
}

type trackerDataMsg struct {
	tasks []study.Task
}

func (m trackerModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return trackerDataMsg{tasks: m.planner.Tasks()}
	}
}

// filterTasks keeps tasks whose topic or subject contains query
// (case-insensitive) and whose completion matches the filter.
func filterTasks(tasks []study.Task, query string, f taskFilter) []study.Task {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []study.Task
	for _, t := range tasks {
		if q != "" && !strings.Contains(strings.ToLower(t.Topic), q) &&
			!strings.Contains(strings.ToLower(t.Subject), q) {
			continue
		}
		switch f {
		case filterPending:
			if t.Completed {
				continue
			}
		case filterCompleted:
			if !t.Completed {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

func (m trackerModel) visible() []study.Task {
	return filterTasks(m.tasks, m.search.Value(), m.filter)
}

func (m *trackerModel) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m trackerModel) listHeight() int {
	return max(m.height-12, 3)
}

func (m trackerModel) update(msg tea.Msg) (trackerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case trackerDataMsg:
		m.tasks = msg.tasks
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if m.search.Focused() {
			switch {
			case key.Matches(msg, keys.Back), key.Matches(msg, keys.Enter):
				m.search.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m.cursor, m.offset = 0, 0
			return m, cmd
		}

		switch {
		case key.Matches(msg, keys.Search):
			cmd := m.search.Focus()
			return m, cmd
		case key.Matches(msg, keys.Filter):
			m.filter = (m.filter + 1) % taskFilter(len(filterNames))
			m.cursor, m.offset = 0, 0
		case key.Matches(msg, keys.Back):
			m.search.SetValue("")
			m.cursor, m.offset = 0, 0
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.visible())-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
			if vis := m.visible(); m.cursor < len(vis) {
				return m, toggleCmd(m.planner, vis[m.cursor])
			}
		}
		h := m.listHeight()
		if m.cursor < m.offset {
			m.offset = m.cursor
		} else if m.cursor >= m.offset+h {
			m.offset = m.cursor - h + 1
		}
	}
	return m, nil
}

func (m trackerModel) view() string {
	w := m.width - 4

	var tabs []string
	for i, name := range filterNames {
		if taskFilter(i) == m.filter {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Study Tasks"), "  ", lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...))

	vis := m.visible()
	var rows []string
	rows = append(rows, header, "", m.search.View(), "")

	if len(vis) == 0 {
		rows = append(rows, mutedStyle.Render("  No tasks found."))
	}
	end := min(m.offset+m.listHeight(), len(vis))
	for i := m.offset; i < end; i++ {
		t := vis[i]
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		topic := truncate(t.Topic, max(w-60, 16))
		if t.Completed {
			topic = doneStyle.Render(topic)
		} else {
			topic = style.Render(topic)
		}
		rows = append(rows, fmt.Sprintf("%s%s %s %s  %s  %s",
			style.Render(cursor),
			checkbox(t.Completed),
			subjectStyle(t.Subject).Width(18).Render(truncate(t.Subject, 17)),
			lipgloss.NewStyle().Width(max(w-60, 16)+1).Render(topic),
			mutedStyle.Width(11).Render(formatDue(t.DueDate)),
			priorityStyle(t.Priority).Render(string(t.Priority)+" priority"),
		))
	}

	rows = append(rows, "", mutedStyle.Render(fmt.Sprintf("  %d of %d tasks   /: search  f: filter  space: toggle done", len(vis), len(m.tasks))))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

package tui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/cramr/internal/importer"
	"github.com/sadopc/cramr/internal/planner"
	"github.com/sadopc/cramr/internal/stats"
	"github.com/sadopc/cramr/internal/study"
)

const (
	upcomingCount   = 3
	motivationDelay = 30 * time.Second
	defaultCheer    = "Your journey to 9 A*s starts with today's tasks."
)

type dashboardModel struct {
	planner   *planner.Planner
	motivator importer.Motivator
	now       func() time.Time
	width     int
	height    int

	tasks []study.Task

	motivation     string
	motivationFor  int // task count the message was fetched for
	motivationBusy bool

	bar progress.Model
}

func newDashboardModel(p *planner.Planner, m importer.Motivator, now func() time.Time) dashboardModel {
	return dashboardModel{
		planner:       p,
		motivator:     m,
		now:           now,
		tasks:         p.Tasks(),
		motivation:    defaultCheer,
		motivationFor: -1,
		bar:           progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
	d.bar.Width = max(min(w-30, 60), 10)
}

type dashboardDataMsg struct {
	tasks []study.Task
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		return dashboardDataMsg{tasks: d.planner.Tasks()}
	}
}

func (d dashboardModel) fetchMotivation(completed, total int) tea.Cmd {
	m := d.motivator
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), motivationDelay)
		defer cancel()
		text, err := m.Motivate(ctx, completed, total)
		if err != nil {
			log.Printf("[dashboard] motivation: %v", err)
			text = importer.FallbackMotivation
		}
		return motivationMsg{total: total, text: text}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.tasks = msg.tasks
		total := len(d.tasks)
		if d.motivator != nil && total > 0 && total != d.motivationFor && !d.motivationBusy {
			d.motivationFor = total
			d.motivationBusy = true
			return d, d.fetchMotivation(stats.CompletedCount(d.tasks), total)
		}
		return d, nil

	case motivationMsg:
		d.motivationBusy = false
		if strings.TrimSpace(msg.text) != "" {
			d.motivation = msg.text
		}
		// the plan changed while the request was out
		if total := len(d.tasks); d.motivator != nil && total > 0 && total != msg.total {
			d.motivationFor = total
			d.motivationBusy = true
			return d, d.fetchMotivation(stats.CompletedCount(d.tasks), total)
		}
		return d, nil
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4
	if len(d.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Dashboard"),
			"",
			mutedStyle.Render("No study plan yet. Set your preferences (1), then import a plan (2)."),
		)
		return panelStyle.Width(contentWidth).Render(content)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderProgressPanel(contentWidth),
		d.renderMotivationPanel(contentWidth),
		lipgloss.JoinHorizontal(lipgloss.Top,
			d.renderUpcomingPanel(contentWidth/2),
			d.renderSubjectPanel(contentWidth-contentWidth/2),
		),
	)
}

func (d dashboardModel) renderProgressPanel(w int) string {
	now := d.now()
	total := len(d.tasks)
	done := stats.CompletedCount(d.tasks)
	pct := stats.OverallPercent(d.tasks)

	today := stats.CompletedOn(d.tasks, now)
	goal := stats.DailyGoal(total)
	streak := stats.Streak(d.tasks, now)

	figure := func(value, label string) string {
		return lipgloss.JoinVertical(lipgloss.Left, figureStyle.Render(value), mutedStyle.Render(label))
	}
	streakText := fmt.Sprintf("%d days", streak)
	if streak == 1 {
		streakText = "1 day"
	}
	goalStyle := figureStyle
	if today >= goal {
		goalStyle = goalStyle.Foreground(colorSuccess)
	}
	figures := lipgloss.JoinHorizontal(lipgloss.Top,
		figure(fmt.Sprintf("%d/%d", done, total), "tasks done"), "     ",
		figure(streakText, "streak"), "     ",
		lipgloss.JoinVertical(lipgloss.Left,
			goalStyle.Render(fmt.Sprintf("%d/%d", today, goal)), mutedStyle.Render("done today")),
	)

	bar := fmt.Sprintf("%s  %s", d.bar.ViewAs(float64(pct)/100), highlightStyle.Render(fmt.Sprintf("%d%%", pct)))
	return activePanelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Overall Progress"), "", bar, "", figures),
	)
}

func (d dashboardModel) renderMotivationPanel(w int) string {
	text := d.motivation
	if d.motivationBusy {
		text = "_Thinking of something encouraging..._"
	}
	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, secondaryStyle.Render("AI Study Coach"), renderMarkdown(text, w-8)),
	)
}

func (d dashboardModel) renderUpcomingPanel(w int) string {
	rows := []string{titleStyle.Render("Up Next")}
	next := stats.Upcoming(d.tasks, upcomingCount)
	if len(next) == 0 {
		rows = append(rows, successStyle.Render("  Everything is done!"))
	}
	for _, t := range next {
		rows = append(rows,
			fmt.Sprintf("  %s %s", subjectStyle(t.Subject).Render("●"), truncate(t.Topic, max(w-12, 10))),
			mutedStyle.Render(fmt.Sprintf("    %s · %s · %s", t.Subject, formatDue(t.DueDate), t.Priority)),
		)
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderSubjectPanel(w int) string {
	rows := []string{titleStyle.Render("Subject Mastery")}
	barW := max(w-34, 6)
	for _, s := range stats.SubjectProgress(d.tasks) {
		filled := s.Percent * barW / 100
		bar := subjectStyle(s.Name).Render(strings.Repeat("█", filled)) +
			mutedStyle.Render(strings.Repeat("░", barW-filled))
		rows = append(rows, fmt.Sprintf("  %s %s %3d%%",
			lipgloss.NewStyle().Width(18).Render(truncate(s.Name, 17)), bar, s.Percent))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

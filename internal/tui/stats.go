package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/cramr/internal/planner"
	"github.com/sadopc/cramr/internal/stats"
	"github.com/sadopc/cramr/internal/study"
)

type statsModel struct {
	planner *planner.Planner
	now     func() time.Time
	width   int
	height  int

	tasks    []study.Task
	activity []stats.DayCount
	summary  stats.Summary

	chart barchart.Model
}

func newStatsModel(p *planner.Planner, now func() time.Time) statsModel {
	v := statsModel{
		planner: p,
		now:     now,
		chart:   barchart.New(60, 12),
	}
	v.setTasks(p.Tasks())
	return v
}

func (v *statsModel) setSize(w, h int) {
	v.width = w
	v.height = h
	v.buildChart()
}

type statsDataMsg struct {
	tasks []study.Task
}

func (v statsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return statsDataMsg{tasks: v.planner.Tasks()}
	}
}

func (v *statsModel) setTasks(tasks []study.Task) {
	now := v.now()
	v.tasks = tasks
	v.activity = stats.Activity(tasks, now)
	v.summary = stats.Summarize(tasks, now)
	v.buildChart()
}

func (v statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	if msg, ok := msg.(statsDataMsg); ok {
		v.setTasks(msg.tasks)
	}
	return v, nil
}

func (v *statsModel) buildChart() {
	chartWidth := max(v.width/2-8, 28)
	chartHeight := 10
	if v.height > 34 {
		chartHeight = 14
	}

	v.chart = barchart.New(chartWidth, chartHeight)

	today := study.DayOf(v.now())
	bars := make([]barchart.BarData, 0, len(v.activity))
	for _, d := range v.activity {
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if d.Date.Equal(today) {
			style = lipgloss.NewStyle().Foreground(colorSecondary)
		}
		if d.Count == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label:  d.Label,
			Values: []barchart.BarValue{{Name: "Completed", Value: float64(d.Count), Style: style}},
		})
	}

	v.chart.PushAll(bars)
	v.chart.Draw()
}

func (v statsModel) view() string {
	w := v.width - 4
	if len(v.tasks) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Statistics"), "",
			mutedStyle.Render("Complete a few tasks to see your statistics here."),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.renderSummary(w),
		lipgloss.JoinHorizontal(lipgloss.Top,
			v.renderActivity(w/2),
			v.renderShare(w-w/2),
		),
	)
}

func (v statsModel) renderSummary(w int) string {
	card := func(value, label string, style lipgloss.Style) string {
		return lipgloss.NewStyle().Width(max(w/4-2, 12)).Render(
			lipgloss.JoinVertical(lipgloss.Left, style.Render(value), mutedStyle.Render(label)),
		)
	}
	gradeStyle := figureStyle
	if v.summary.Grade == stats.GradeFocusing {
		gradeStyle = warningStyle.Bold(true)
	}
	return activePanelStyle.Width(w).Render(lipgloss.JoinHorizontal(lipgloss.Top,
		card(fmt.Sprintf("%.1f", v.summary.AveragePerDay), "avg tasks / day", figureStyle),
		card(fmt.Sprintf("%d%%", v.summary.Consistency), "consistency (7d)", figureStyle),
		card(v.summary.BestSubject, "best subject", subjectStyle(v.summary.BestSubject).Bold(true)),
		card(v.summary.Grade, "focus grade", gradeStyle),
	))
}

func (v statsModel) renderActivity(w int) string {
	total := 0
	for _, d := range v.activity {
		total += d.Count
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Last 7 Days"),
		mutedStyle.Render(fmt.Sprintf("%d tasks completed", total)),
		"",
		v.chart.View(),
	))
}

func (v statsModel) renderShare(w int) string {
	rows := []string{titleStyle.Render("Subject Split"), ""}
	total := len(v.tasks)
	for _, s := range stats.SubjectShare(v.tasks) {
		pct := 100 * s.Total / total
		dot := subjectStyle(s.Name).Render("●")
		rows = append(rows, fmt.Sprintf("  %s %-18s %4d %s",
			dot, truncate(s.Name, 18), s.Total, mutedStyle.Render(fmt.Sprintf("(%d%%)", pct))))
	}
	rows = append(rows, "", mutedStyle.Render("  "+strings.Repeat("─", max(min(w-8, 34), 4))))
	rows = append(rows, fmt.Sprintf("  %-20s %4d", "Total", total))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/cramr/internal/export"
	"github.com/sadopc/cramr/internal/importer"
	"github.com/sadopc/cramr/internal/planner"
	"github.com/sadopc/cramr/internal/study"
)

var exportChoices = []string{"JSON backup", "CSV task list", "Restore from backup"}

const (
	exportJSON = iota
	exportCSV
	exportRestore
)

// App is the root Bubble Tea model.
type App struct {
	planner *planner.Planner
	now     func() time.Time
	width   int
	height  int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	// modal dialogs owned by the root model
	clearForm    *huh.Form
	clearOK      *bool
	restoreForm  *huh.Form
	restorePath  *string
	exportTarget string

	settings   settingsModel
	importView importModel
	timetable  timetableModel
	tracker    trackerModel
	dashboard  dashboardModel
	stats      statsModel

	help      help.Model
	status    string
	statusErr bool
}

// NewApp builds the root model. motivator may be nil, in which case the
// dashboard keeps its static message.
func NewApp(p *planner.Planner, pipe *importer.Pipeline, motivator importer.Motivator, now func() time.Time) App {
	if now == nil {
		now = time.Now
	}
	h := help.New()
	h.ShowAll = false

	home, _ := os.UserHomeDir()
	start := viewConfig
	if len(p.Tasks()) > 0 {
		start = viewDashboard
	}

	return App{
		planner:      p,
		now:          now,
		activeView:   start,
		exportTarget: home,
		settings:     newSettingsModel(p, now),
		importView:   newImportModel(pipe, p, now),
		timetable:    newTimetableModel(p),
		tracker:      newTrackerModel(p),
		dashboard:    newDashboardModel(p, motivator, now),
		stats:        newStatsModel(p, now),
		help:         h,
	}
}

func (a App) Init() tea.Cmd {
	return a.refreshAll()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.settings.setSize(a.width, contentHeight)
		a.importView.setSize(a.width, contentHeight)
		a.timetable.setSize(a.width, contentHeight)
		a.tracker.setSize(a.width, contentHeight)
		a.dashboard.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.clearForm != nil {
			return a.updateClearForm(msg)
		}
		if a.restoreForm != nil {
			return a.updateRestoreForm(msg)
		}
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Clear):
			return a.showClearForm()
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewConfig)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewImport)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewPlanner)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewTasks)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewDashboard)
		case key.Matches(msg, keys.Tab6):
			return a.switchTo(viewStats)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.importView, cmd = a.importView.update(msg)
		return a, cmd

	case importDoneMsg:
		var cmd tea.Cmd
		a.importView, cmd = a.importView.update(msg)
		if msg.err != nil {
			if errors.Is(msg.err, importer.ErrNotConfigured) {
				a.setStatus("No AI provider configured", true)
			} else {
				a.setStatus(importErrorText(msg.err), true)
			}
			return a, cmd
		}
		a.activeView = viewPlanner
		return a, tea.Batch(cmd, commitImportCmd(a.planner, msg.tasks))

	case planChangedMsg:
		if msg.err != nil {
			a.setStatus(fmt.Sprintf("Changes kept in memory but not saved: %v", msg.err), true)
		} else {
			a.setStatus(msg.text, false)
		}
		return a, a.refreshAll()

	case restoreDoneMsg:
		a.setStatus(fmt.Sprintf("Restored %d tasks from backup", msg.tasks), false)
		return a, a.refreshAll()

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, false)
		a.exportPicking = false
		return a, nil

	case settingsDataMsg:
		a.settings, _ = a.settings.update(msg)
		return a, nil
	case timetableDataMsg:
		a.timetable, _ = a.timetable.update(msg)
		return a, nil
	case trackerDataMsg:
		a.tracker, _ = a.tracker.update(msg)
		return a, nil
	case statsDataMsg:
		a.stats, _ = a.stats.update(msg)
		return a, nil
	case dashboardDataMsg, motivationMsg:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		return a, cmd
	}

	if a.clearForm != nil {
		return a.updateClearForm(msg)
	}
	if a.restoreForm != nil {
		return a.updateRestoreForm(msg)
	}
	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string, isError bool) {
	a.status = text
	a.statusErr = isError
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewConfig:
		a.settings, cmd = a.settings.update(msg)
	case viewImport:
		a.importView, cmd = a.importView.update(msg)
	case viewPlanner:
		a.timetable, cmd = a.timetable.update(msg)
	case viewTasks:
		a.tracker, cmd = a.tracker.update(msg)
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewConfig:
		return a.settings.formActive
	case viewImport:
		return a.importView.capturing()
	case viewPlanner:
		return a.timetable.agenda
	case viewTasks:
		return a.tracker.capturing()
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewConfig:
		return a.settings.refresh()
	case viewPlanner:
		return a.timetable.refresh()
	case viewTasks:
		return a.tracker.refresh()
	case viewDashboard:
		return a.dashboard.loadData()
	case viewStats:
		return a.stats.refresh()
	}
	return nil
}

// refreshAll reloads every view after the plan changed underneath them.
func (a App) refreshAll() tea.Cmd {
	return tea.Batch(
		a.settings.refresh(),
		a.timetable.refresh(),
		a.tracker.refresh(),
		a.dashboard.loadData(),
		a.stats.refresh(),
	)
}

func commitImportCmd(p *planner.Planner, tasks []study.Task) tea.Cmd {
	mode := p.Mode()
	return func() tea.Msg {
		if err := p.Commit(tasks); err != nil {
			return planChangedMsg{err: err}
		}
		return planChangedMsg{text: fmt.Sprintf("Imported %d tasks (%s)", len(tasks), mode)}
	}
}

// --- Clear confirmation ---

func (a App) showClearForm() (tea.Model, tea.Cmd) {
	ok := false
	a.clearOK = &ok
	a.clearForm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Clear the whole study plan?").
				Description(fmt.Sprintf("%d tasks will be removed. Settings are kept.", len(a.planner.Tasks()))).
				Affirmative("Clear").
				Negative("Cancel").
				Value(a.clearOK),
		),
	).WithShowHelp(false).WithWidth(60)
	return a, a.clearForm.Init()
}

func (a App) updateClearForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		a.clearForm = nil
		return a, nil
	}

	form, cmd := a.clearForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.clearForm = f
	}
	switch a.clearForm.State {
	case huh.StateCompleted:
		a.clearForm = nil
		if !*a.clearOK {
			return a, nil
		}
		p := a.planner
		return a, func() tea.Msg {
			if err := p.Clear(); err != nil {
				return planChangedMsg{err: err}
			}
			return planChangedMsg{text: "Study plan cleared"}
		}
	case huh.StateAborted:
		a.clearForm = nil
		return a, nil
	}
	return a, cmd
}

// --- Restore from backup ---

func (a App) showRestoreForm() (tea.Model, tea.Cmd) {
	path := ""
	a.restorePath = &path
	a.restoreForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backup file").
				Description("Path to a JSON backup. The current plan and settings are replaced.").
				Placeholder(filepath.Join(a.exportTarget, "cramr-backup.json")).
				Value(a.restorePath).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("enter a path")
					}
					return nil
				}),
		),
	).WithShowHelp(false).WithShowErrors(true).WithWidth(72)
	return a, a.restoreForm.Init()
}

func (a App) updateRestoreForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		a.restoreForm = nil
		return a, nil
	}

	form, cmd := a.restoreForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.restoreForm = f
	}
	switch a.restoreForm.State {
	case huh.StateCompleted:
		a.restoreForm = nil
		return a, restoreCmd(a.planner, expandHome(strings.TrimSpace(*a.restorePath)))
	case huh.StateAborted:
		a.restoreForm = nil
		return a, nil
	}
	return a, cmd
}

func restoreCmd(p *planner.Planner, path string) tea.Cmd {
	return func() tea.Msg {
		b, err := export.FromJSON(path)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Restore failed: %v", err), isError: true}
		}
		if err := p.Restore(b.Tasks, b.Settings); err != nil {
			return planChangedMsg{err: err}
		}
		return restoreDoneMsg{tasks: len(b.Tasks)}
	}
}

// --- Export picker ---

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export / Backup"), ""}
	for i, f := range exportChoices {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  files are written to "+a.exportTarget))
	rows = append(rows, mutedStyle.Render("  enter: select  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportChoices)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		if a.exportCursor == exportRestore {
			return a.showRestoreForm()
		}
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	p := a.planner
	dir := a.exportTarget
	dateStr := a.now().Format("2006-01-02")
	return func() tea.Msg {
		tasks := p.Tasks()

		var path string
		switch format {
		case exportCSV:
			path = filepath.Join(dir, fmt.Sprintf("cramr-tasks-%s.csv", dateStr))
			if err := export.ToCSV(tasks, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		default:
			path = filepath.Join(dir, fmt.Sprintf("cramr-backup-%s.json", dateStr))
			if err := export.ToJSON(tasks, p.Settings(), path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}

// --- Rendering ---

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewConfig:
		content = a.settings.view()
	case viewImport:
		content = a.importView.view()
	case viewPlanner:
		content = a.timetable.view()
	case viewTasks:
		content = a.tracker.view()
	case viewDashboard:
		content = a.dashboard.view()
	case viewStats:
		content = a.stats.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	switch {
	case a.exportPicking:
		content = a.renderExportPicker()
	case a.clearForm != nil:
		content = activePanelStyle.Width(a.width - 4).Render(a.clearForm.View())
	case a.restoreForm != nil:
		content = activePanelStyle.Width(a.width - 4).Render(a.restoreForm.View())
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
		label := fmt.Sprintf("%d %s", i+1, name)
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("cramr")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	importing := ""
	if a.importView.busy() && a.activeView != viewImport {
		importing = warningStyle.Render(" ● importing")
	}

	left := footerStyle.Render(helpView)
	right := importing + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

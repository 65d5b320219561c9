package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/cramr/internal/importer"
	"github.com/sadopc/cramr/internal/planner"
)

const setupGuide = `## AI extraction is not set up

cramr sends your study plan to an AI model to turn it into tasks.

**Gemini** (default): create an API key at https://aistudio.google.com/apikey and
export it before starting cramr:

    export GEMINI_API_KEY=your-key

**Ollama** (local): run an Ollama server with a vision model and select it:

    ollama pull llama3.2-vision
    export CRAMR_PROVIDER=ollama

Both settings can also live in ` + "`.env`" + ` or in the config file.`

type importFocus int

const (
	focusNone importFocus = iota
	focusText
	focusFile
)

type importModel struct {
	pipeline *importer.Pipeline
	planner  *planner.Planner
	now      func() time.Time
	width    int
	height   int

	text    textarea.Model
	path    textinput.Model
	spinner spinner.Model
	focus   importFocus

	// submitted spans a submit until its importDoneMsg, including the file
	// read that happens before the pipeline claims itself.
	submitted bool
	source    string
	lastErr   error
}

func newImportModel(pipe *importer.Pipeline, p *planner.Planner, now func() time.Time) importModel {
	ta := textarea.New()
	ta.Placeholder = "Paste your syllabus or study plan here..."
	ta.ShowLineNumbers = false
	ta.SetWidth(60)
	ta.SetHeight(10)

	ti := textinput.New()
	ti.Prompt = "file> "
	ti.Placeholder = "~/Downloads/plan.png"
	ti.CharLimit = 1024
	ti.Width = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = highlightStyle

	return importModel{
		pipeline: pipe,
		planner:  p,
		now:      now,
		text:     ta,
		path:     ti,
		spinner:  sp,
	}
}

func (m *importModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.text.SetWidth(max(w-10, 20))
	m.text.SetHeight(max(min(h-16, 14), 3))
	m.path.Width = max(w-18, 20)
}

// busy reports whether an import is in flight, from this view or any
// other user of the pipeline.
func (m importModel) busy() bool {
	return m.submitted || (m.pipeline != nil && m.pipeline.Running())
}

// capturing reports whether keystrokes belong to a text field.
func (m importModel) capturing() bool {
	return m.focus != focusNone
}

func (m importModel) update(msg tea.Msg) (importModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case importDoneMsg:
		m.submitted = false
		m.lastErr = msg.err
		if msg.err == nil {
			m.text.Reset()
			m.path.Reset()
		}
		return m, nil

	case tea.KeyMsg:
		switch m.focus {
		case focusText:
			return m.updateText(msg)
		case focusFile:
			return m.updateFile(msg)
		}
		switch {
		case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
			m.focus = focusText
			cmd := m.text.Focus()
			return m, cmd
		case key.Matches(msg, keys.File):
			m.focus = focusFile
			cmd := m.path.Focus()
			return m, cmd
		case key.Matches(msg, keys.Submit):
			return m.submitText()
		}
	}
	return m, nil
}

func (m importModel) updateText(msg tea.KeyMsg) (importModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.focus = focusNone
		m.text.Blur()
		return m, nil
	case key.Matches(msg, keys.Submit):
		m.focus = focusNone
		m.text.Blur()
		return m.submitText()
	}
	var cmd tea.Cmd
	m.text, cmd = m.text.Update(msg)
	return m, cmd
}

func (m importModel) updateFile(msg tea.KeyMsg) (importModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.focus = focusNone
		m.path.Blur()
		return m, nil
	case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Submit):
		m.focus = focusNone
		m.path.Blur()
		return m.submitFile()
	}
	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	return m, cmd
}

func (m importModel) submitText() (importModel, tea.Cmd) {
	text := m.text.Value()
	return m.start("pasted text", func() (importer.Input, error) {
		return importer.Input{Text: text}, nil
	})
}

func (m importModel) submitFile() (importModel, tea.Cmd) {
	path := expandHome(strings.TrimSpace(m.path.Value()))
	return m.start(path, func() (importer.Input, error) {
		return importer.ReadFile(path)
	})
}

func (m importModel) start(source string, input func() (importer.Input, error)) (importModel, tea.Cmd) {
	if m.busy() {
		return m, func() tea.Msg {
			return statusMsg{text: importer.ErrImportInFlight.Error(), isError: true}
		}
	}
	m.submitted = true
	m.source = source
	m.lastErr = nil

	cfg := m.planner.Settings()
	now := m.now()
	pipe := m.pipeline
	run := func() tea.Msg {
		in, err := input()
		if err != nil {
			return importDoneMsg{err: err}
		}
		tasks, err := pipe.Import(context.Background(), in, cfg, now)
		return importDoneMsg{tasks: tasks, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, run)
}

func importErrorText(err error) string {
	switch {
	case errors.Is(err, importer.ErrEmptyInput):
		return "Paste a plan or choose a file first."
	case errors.Is(err, importer.ErrNoTasks):
		return "No study tasks were found in that plan."
	case errors.Is(err, importer.ErrParse):
		return "Failed to process the study plan. Please try again."
	case errors.Is(err, importer.ErrImportInFlight):
		return "An import is already running."
	}
	return fmt.Sprintf("Import failed: %v", err)
}

func (m importModel) view() string {
	w := m.width - 4
	title := titleStyle.Render("Import Study Plan")

	var rows []string
	rows = append(rows, title, mutedStyle.Render("Paste a syllabus, or give the path of an image or PDF."), "")

	textBox := panelStyle
	if m.focus == focusText {
		textBox = activePanelStyle
	}
	rows = append(rows, textBox.Padding(0, 1).Render(m.text.View()), "")
	rows = append(rows, m.path.View(), "")

	switch {
	case m.busy():
		rows = append(rows, fmt.Sprintf("%s Analyzing %s...", m.spinner.View(), m.source))
	case errors.Is(m.lastErr, importer.ErrNotConfigured):
		rows = append(rows, renderMarkdown(setupGuide, w-6))
	case m.lastErr != nil:
		rows = append(rows, errorStyle.Render(importErrorText(m.lastErr)))
	}

	rows = append(rows, "")
	switch m.focus {
	case focusText:
		rows = append(rows, mutedStyle.Render("  ctrl+s: import  esc: stop editing"))
	case focusFile:
		rows = append(rows, mutedStyle.Render("  enter: import file  esc: cancel"))
	default:
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  i: paste plan  o: open file  ctrl+s: import  (new tasks %s)", m.planner.Mode())))
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

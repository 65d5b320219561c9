package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/sadopc/cramr/internal/study"
)

// viewState represents the currently active view.
type viewState int

const (
	viewConfig viewState = iota
	viewImport
	viewPlanner
	viewTasks
	viewDashboard
	viewStats
)

var viewNames = []string{"Config", "Import", "Planner", "Tasks", "Dashboard", "Stats"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

// planChangedMsg follows every planner command. err carries a failed save;
// the in-memory change has still been applied.
type planChangedMsg struct {
	text string
	err  error
}

type importDoneMsg struct {
	tasks []study.Task
	err   error
}

type motivationMsg struct {
	total int
	text  string
}

type exportDoneMsg struct {
	path string
}

type restoreDoneMsg struct {
	tasks int
}

// --- Helpers ---

func formatHours(h float64) string {
	if h <= 0 {
		return ""
	}
	return fmt.Sprintf("%.1fh", h)
}

func formatDue(t time.Time) string {
	if t.IsZero() {
		return "no date"
	}
	return t.Local().Format("Mon 2 Jan")
}

func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(r[:w-1]) + "…"
}

func checkbox(done bool) string {
	if done {
		return successStyle.Render("✓")
	}
	return mutedStyle.Render("○")
}

func renderMarkdown(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width, 20)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

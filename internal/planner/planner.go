// Package planner holds the canonical task collection and settings. Every
// command swaps in a new snapshot and writes the whole state through to a
// Persister.
package planner

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/sadopc/cramr/internal/study"
)

var ErrUnknownTask = errors.New("unknown task")

// Persister stores the full state. store.Store satisfies it.
type Persister interface {
	Save(tasks []study.Task, cfg study.Settings) error
}

// Mode decides how a committed import combines with existing tasks.
type Mode int

const (
	ModeAppend Mode = iota
	ModeReplace
)

var modeNames = []string{"append", "replace"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts "append" or "replace"; empty means append.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "append":
		return ModeAppend, nil
	case "replace":
		return ModeReplace, nil
	}
	return ModeAppend, fmt.Errorf("unknown import mode %q", s)
}

type Planner struct {
	mu       sync.Mutex
	tasks    []study.Task
	settings study.Settings
	store    Persister
	mode     Mode
	now      func() time.Time
}

// New takes ownership of copies of tasks and cfg.
func New(store Persister, tasks []study.Task, cfg study.Settings, mode Mode) *Planner {
	return &Planner{
		tasks:    study.Clone(tasks),
		settings: cfg.Clone(),
		store:    store,
		mode:     mode,
		now:      time.Now,
	}
}

// SetClock replaces the time source used for completion timestamps.
func (p *Planner) SetClock(now func() time.Time) {
	p.mu.Lock()
	p.now = now
	p.mu.Unlock()
}

func (p *Planner) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

func (p *Planner) SetMode(m Mode) {
	p.mu.Lock()
	p.mode = m
	p.mu.Unlock()
}

// Tasks returns a copy of the current collection.
func (p *Planner) Tasks() []study.Task {
	p.mu.Lock()
	defer p.mu.Unlock()
	return study.Clone(p.tasks)
}

// Settings returns a copy of the current settings.
func (p *Planner) Settings() study.Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings.Clone()
}

// commit swaps in the new state and persists it. The in-memory state is
// kept even when persistence fails.
func (p *Planner) commit(tasks []study.Task, cfg study.Settings) error {
	p.tasks = tasks
	p.settings = cfg
	if p.store == nil {
		return nil
	}
	if err := p.store.Save(study.Clone(tasks), cfg.Clone()); err != nil {
		log.Printf("[planner] save failed: %v", err)
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

// Toggle flips completion of the task with id.
func (p *Planner) Toggle(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := study.Clone(p.tasks)
	for i := range next {
		if next[i].ID == id {
			next[i] = next[i].Toggle(p.now())
			return p.commit(next, p.settings)
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownTask, id)
}

// Append adds tasks after the existing ones. Incoming ids that collide with
// existing ones are regenerated.
func (p *Planner) Append(tasks []study.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	next := study.Clone(p.tasks)
	seen := make(map[string]bool, len(next)+len(tasks))
	for _, t := range next {
		seen[t.ID] = true
	}
	now := p.now()
	for _, t := range study.Clone(tasks) {
		for t.ID == "" || seen[t.ID] {
			t.ID = study.NewID(now)
		}
		seen[t.ID] = true
		next = append(next, t)
	}
	return p.commit(next, p.settings)
}

// ReplaceAll discards the current collection in favour of tasks. An empty
// slice leaves the collection unchanged; use Clear to empty it.
func (p *Planner) ReplaceAll(tasks []study.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.commit(dedupe(study.Clone(tasks), p.now()), p.settings)
}

// Commit applies imported tasks according to the configured mode.
func (p *Planner) Commit(tasks []study.Task) error {
	if p.Mode() == ModeReplace {
		return p.ReplaceAll(tasks)
	}
	return p.Append(tasks)
}

// Clear removes every task. Settings are kept.
func (p *Planner) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.commit(nil, p.settings)
}

// UpdateSettings applies fn to a copy of the settings. If fn fails nothing
// changes.
func (p *Planner) UpdateSettings(fn func(*study.Settings) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.settings.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	return p.commit(p.tasks, next)
}

// Restore replaces both tasks and settings, as when loading a backup.
func (p *Planner) Restore(tasks []study.Task, cfg study.Settings) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.commit(dedupe(study.Clone(tasks), p.now()), cfg.Normalize(p.now()))
}

func dedupe(tasks []study.Task, now time.Time) []study.Task {
	seen := make(map[string]bool, len(tasks))
	for i := range tasks {
		for tasks[i].ID == "" || seen[tasks[i].ID] {
			tasks[i].ID = study.NewID(now)
		}
		seen[tasks[i].ID] = true
	}
	return tasks
}

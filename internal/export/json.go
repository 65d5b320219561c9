package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/cramr/internal/study"
)

// BackupVersion is written into every backup document.
const BackupVersion = 1

var ErrInvalidBackup = errors.New("invalid backup file")

// Backup is the full restorable state.
type Backup struct {
	ExportedAt time.Time
	Settings   study.Settings
	Tasks      []study.Task
}

type jsonBackup struct {
	Version    int          `json:"version"`
	ExportedAt string       `json:"exportedAt"`
	Settings   jsonSettings `json:"settings"`
	Tasks      []jsonTask   `json:"tasks"`
}

type jsonSettings struct {
	DaysPerWeek       int            `json:"daysPerWeek"`
	HoursPerDay       int            `json:"hoursPerDay"`
	SubjectsPerDay    int            `json:"subjectsPerDay"`
	CompletionDays    int            `json:"completionDays"`
	StartDate         string         `json:"startDate"`
	SubjectImportance map[string]int `json:"subjectImportance"`
}

type jsonTask struct {
	ID          string   `json:"id"`
	Subject     string   `json:"subject"`
	Topic       string   `json:"topic"`
	DueDate     string   `json:"dueDate"`
	Week        int      `json:"week,omitempty"`
	Day         *int     `json:"day,omitempty"`
	Priority    string   `json:"priority"`
	IsCompleted bool     `json:"isCompleted"`
	CompletedAt string   `json:"completedAt,omitempty"`
	Duration    *float64 `json:"duration,omitempty"`
}

func encodeTask(t study.Task) jsonTask {
	jt := jsonTask{
		ID:          t.ID,
		Subject:     t.Subject,
		Topic:       t.Topic,
		DueDate:     study.FormatDate(t.DueDate),
		Priority:    string(t.Priority),
		IsCompleted: t.Completed,
	}
	if t.Scheduled() {
		day := t.Day
		jt.Week, jt.Day = t.Week, &day
	}
	if t.CompletedAt != nil {
		jt.CompletedAt = t.CompletedAt.UTC().Format(time.RFC3339Nano)
	}
	if t.Duration > 0 {
		d := t.Duration
		jt.Duration = &d
	}
	return jt
}

func decodeTask(jt jsonTask) (study.Task, error) {
	if jt.ID == "" {
		return study.Task{}, errors.New("task without id")
	}
	t := study.Task{
		ID:        jt.ID,
		Subject:   jt.Subject,
		Topic:     jt.Topic,
		Priority:  study.PriorityMedium,
		Completed: jt.IsCompleted,
	}
	if t.Subject == "" {
		t.Subject = study.GeneralSubject
	}
	if p, ok := study.ParsePriority(jt.Priority); ok {
		t.Priority = p
	}
	if jt.DueDate != "" {
		d, err := study.ParseDate(jt.DueDate)
		if err != nil {
			return study.Task{}, fmt.Errorf("task %s due date: %w", jt.ID, err)
		}
		t.DueDate = d
	}
	if jt.Week >= 1 && jt.Day != nil && *jt.Day >= 0 && *jt.Day <= 6 {
		t.Week, t.Day = jt.Week, *jt.Day
	}
	if jt.CompletedAt != "" {
		at, err := time.Parse(time.RFC3339Nano, jt.CompletedAt)
		if err != nil {
			return study.Task{}, fmt.Errorf("task %s completedAt: %w", jt.ID, err)
		}
		if t.Completed {
			t.CompletedAt = &at
		}
	}
	if t.Completed && t.CompletedAt == nil {
		return study.Task{}, fmt.Errorf("task %s completed without timestamp", jt.ID)
	}
	if jt.Duration != nil && *jt.Duration > 0 {
		t.Duration = *jt.Duration
	}
	return t, nil
}

// WriteBackup encodes tasks and settings as an indented JSON document.
func WriteBackup(w io.Writer, tasks []study.Task, cfg study.Settings, now time.Time) error {
	doc := jsonBackup{
		Version:    BackupVersion,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Settings: jsonSettings{
			DaysPerWeek:       cfg.DaysPerWeek,
			HoursPerDay:       cfg.HoursPerDay,
			SubjectsPerDay:    cfg.SubjectsPerDay,
			CompletionDays:    cfg.CompletionDays,
			StartDate:         study.FormatDate(cfg.StartDate),
			SubjectImportance: cfg.SubjectImportance,
		},
		Tasks: make([]jsonTask, 0, len(tasks)),
	}
	for _, t := range tasks {
		doc.Tasks = append(doc.Tasks, encodeTask(t))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// ReadBackup decodes a backup document. Both "settings" and "tasks" must be
// present; anything malformed yields ErrInvalidBackup. Missing settings
// fields take their defaults and the result is clamped into range.
func ReadBackup(r io.Reader, now time.Time) (Backup, error) {
	var top map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&top); err != nil {
		return Backup{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	rawSettings, ok := top["settings"]
	if !ok {
		return Backup{}, fmt.Errorf("%w: missing settings", ErrInvalidBackup)
	}
	rawTasks, ok := top["tasks"]
	if !ok {
		return Backup{}, fmt.Errorf("%w: missing tasks", ErrInvalidBackup)
	}

	// absent fields keep their defaults
	def := study.DefaultSettings(now)
	js := jsonSettings{
		DaysPerWeek:    def.DaysPerWeek,
		HoursPerDay:    def.HoursPerDay,
		SubjectsPerDay: def.SubjectsPerDay,
		CompletionDays: def.CompletionDays,
	}
	if err := json.Unmarshal(rawSettings, &js); err != nil {
		return Backup{}, fmt.Errorf("%w: settings: %v", ErrInvalidBackup, err)
	}
	cfg := study.Settings{
		DaysPerWeek:       js.DaysPerWeek,
		HoursPerDay:       js.HoursPerDay,
		SubjectsPerDay:    js.SubjectsPerDay,
		CompletionDays:    js.CompletionDays,
		SubjectImportance: js.SubjectImportance,
	}
	if js.StartDate != "" {
		d, err := study.ParseDate(js.StartDate)
		if err != nil {
			return Backup{}, fmt.Errorf("%w: start date: %v", ErrInvalidBackup, err)
		}
		cfg.StartDate = d
	}

	var jts []jsonTask
	if err := json.Unmarshal(rawTasks, &jts); err != nil {
		return Backup{}, fmt.Errorf("%w: tasks: %v", ErrInvalidBackup, err)
	}
	tasks := make([]study.Task, 0, len(jts))
	seen := make(map[string]bool, len(jts))
	for _, jt := range jts {
		t, err := decodeTask(jt)
		if err != nil {
			return Backup{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
		}
		if seen[t.ID] {
			return Backup{}, fmt.Errorf("%w: duplicate task id %s", ErrInvalidBackup, t.ID)
		}
		seen[t.ID] = true
		tasks = append(tasks, t)
	}

	b := Backup{Settings: cfg.Normalize(now), Tasks: tasks}
	if raw, ok := top["exportedAt"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			b.ExportedAt, _ = time.Parse(time.RFC3339, s)
		}
	}
	return b, nil
}

// ToJSON writes a backup file at path.
func ToJSON(tasks []study.Task, cfg study.Settings, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	if err := WriteBackup(f, tasks, cfg, time.Now()); err != nil {
		f.Close()
		return fmt.Errorf("write json file: %w", err)
	}
	return f.Close()
}

// FromJSON reads a backup file from path.
func FromJSON(path string) (Backup, error) {
	f, err := os.Open(path)
	if err != nil {
		return Backup{}, fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()
	return ReadBackup(f, time.Now())
}

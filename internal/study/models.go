package study

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date encoding used for due and start dates.
const DateLayout = "2006-01-02"

// GeneralSubject is the bucket for tasks whose subject was not supplied.
const GeneralSubject = "General"

// Subjects is the fixed set of subjects a plan is built from.
var Subjects = []string{
	"Math",
	"Physics",
	"Chemistry",
	"Economics",
	"Biology",
	"English",
	"Spanish",
	"Computer Science",
}

// IsSubject reports whether name is one of the enumerated subjects.
func IsSubject(name string) bool {
	for _, s := range Subjects {
		if s == name {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority matches low/medium/high case-insensitively.
func ParsePriority(s string) (Priority, bool) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityLow:
		return PriorityLow, true
	case PriorityMedium:
		return PriorityMedium, true
	case PriorityHigh:
		return PriorityHigh, true
	}
	return "", false
}

// Task is a single unit of study work.
type Task struct {
	ID       string
	Subject  string
	Topic    string
	DueDate  time.Time
	Week     int // 0 when the task has no relative coordinates
	Day      int
	Priority Priority

	Completed   bool
	CompletedAt *time.Time

	Duration float64 // hours, 0 when unknown
}

// Scheduled reports whether the task carries (week, day) coordinates.
func (t Task) Scheduled() bool {
	return t.Week >= 1
}

// Toggle flips completion. CompletedAt is set on false->true and cleared on
// true->false.
func (t Task) Toggle(now time.Time) Task {
	if t.Completed {
		t.Completed = false
		t.CompletedAt = nil
		return t
	}
	at := now
	t.Completed = true
	t.CompletedAt = &at
	return t
}

// Clone returns a deep copy of tasks.
func Clone(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		if t.CompletedAt != nil {
			at := *t.CompletedAt
			t.CompletedAt = &at
		}
		out[i] = t
	}
	return out
}

// DayOf truncates t to local midnight of its calendar day.
func DayOf(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns local midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseInLocation(DateLayout, s, time.Local); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return DayOf(t), nil
}

// FormatDate renders t as YYYY-MM-DD in local time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(DateLayout)
}

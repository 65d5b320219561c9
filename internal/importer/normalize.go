package importer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/cramr/internal/schedule"
	"github.com/sadopc/cramr/internal/study"
)

const DefaultTopic = "New Topic"

// RawTask is one record as the model produced it. Every field may be
// missing or of the wrong JSON type.
type RawTask struct {
	Subject  any
	Topic    any
	DueDate  any
	Week     any
	Day      any
	Priority any
	Duration any
}

func rawFromMap(m map[string]any) RawTask {
	return RawTask{
		Subject:  m["subject"],
		Topic:    m["topic"],
		DueDate:  m["dueDate"],
		Week:     m["week"],
		Day:      m["day"],
		Priority: m["priority"],
		Duration: m["duration"],
	}
}

// DecodeRawTasks parses a model response. It accepts a bare JSON array, an
// object wrapping the array under "tasks", or either inside a markdown code
// fence. Array elements that are not objects are skipped.
func DecodeRawTasks(body string) ([]RawTask, error) {
	body = stripFence(body)
	if body == "" {
		return nil, fmt.Errorf("%w: empty response", ErrParse)
	}

	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	var items []any
	switch x := v.(type) {
	case []any:
		items = x
	case map[string]any:
		if list, ok := x["tasks"].([]any); ok {
			items = list
		} else if isTaskObject(x) {
			items = []any{x}
		} else {
			return nil, fmt.Errorf("%w: object without tasks", ErrParse)
		}
	default:
		return nil, fmt.Errorf("%w: unexpected %T response", ErrParse, v)
	}

	out := make([]RawTask, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, rawFromMap(m))
		}
	}
	return out, nil
}

// isTaskObject reports whether m carries at least one task field, so that
// an error object or a list under another key is not taken for a task.
func isTaskObject(m map[string]any) bool {
	for _, k := range []string{"subject", "topic", "dueDate", "week", "day"} {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Normalize maps any raw record onto a valid task. It never fails: every
// missing or malformed field gets a default.
func Normalize(r RawTask, cfg study.Settings, now time.Time) study.Task {
	t := study.Task{
		ID:       study.NewID(now),
		Subject:  stringOr(r.Subject, study.GeneralSubject),
		Topic:    stringOr(r.Topic, DefaultTopic),
		Priority: study.PriorityMedium,
	}
	if s, ok := r.Priority.(string); ok {
		if p, ok := study.ParsePriority(s); ok {
			t.Priority = p
		}
	}

	week, wok := wholeNumber(r.Week)
	day, dok := wholeNumber(r.Day)
	if wok && dok && week >= 1 && day >= 0 && day < schedule.DaysInWeek {
		t.Week, t.Day = week, day
		t.DueDate = schedule.DueDate(cfg.StartDate, week, day)
	} else {
		t.DueDate = study.DayOf(now)
		if s, ok := r.DueDate.(string); ok {
			if d, err := study.ParseDate(s); err == nil {
				t.DueDate = d
			}
		}
	}

	if d, ok := number(r.Duration); ok && d > 0 {
		t.Duration = d
	}
	return t
}

func stringOr(v any, def string) string {
	if s, ok := v.(string); ok {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return def
}

// number accepts JSON numbers and numeric strings.
func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x) && !math.IsInf(x, 0)
	case int:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func wholeNumber(v any) (int, bool) {
	f, ok := number(v)
	if !ok || f != math.Trunc(f) || math.Abs(f) > 1e6 {
		return 0, false
	}
	return int(f), true
}

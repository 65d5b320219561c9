// Package stats derives dashboard and statistics figures from the task
// collection. Every function is a pure reduction; callers pass now.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/sadopc/cramr/internal/schedule"
	"github.com/sadopc/cramr/internal/study"
)

// ActivityDays is the width of the activity histogram.
const ActivityDays = 7

const (
	GradeFocusing = "Focusing..."
	NoSubject     = "None"
)

// civilDay numbers local calendar days so that consecutive days differ by
// exactly one regardless of DST.
func civilDay(t time.Time) int64 {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400
}

func completedDays(tasks []study.Task) map[int64]bool {
	days := make(map[int64]bool)
	for _, t := range tasks {
		if t.Completed && t.CompletedAt != nil {
			days[civilDay(*t.CompletedAt)] = true
		}
	}
	return days
}

// Streak counts consecutive days with at least one completion, ending today
// or yesterday. A most recent completion older than yesterday yields 0.
func Streak(tasks []study.Task, now time.Time) int {
	set := completedDays(tasks)
	if len(set) == 0 {
		return 0
	}
	days := make([]int64, 0, len(set))
	for d := range set {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] > days[j] })

	today := civilDay(now)
	if days[0] != today && days[0] != today-1 {
		return 0
	}

	streak := 1
	for i := 0; i < len(days)-1; i++ {
		if days[i]-days[i+1] != 1 {
			break
		}
		streak++
	}
	return streak
}

// SubjectStat is the completion tally for one subject.
type SubjectStat struct {
	Name    string
	Total   int
	Done    int
	Percent int
}

func (s SubjectStat) ratio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Done) / float64(s.Total)
}

// tally groups tasks by subject in first-seen order.
func tally(tasks []study.Task) []SubjectStat {
	idx := make(map[string]int)
	var out []SubjectStat
	for _, t := range tasks {
		i, ok := idx[t.Subject]
		if !ok {
			i = len(out)
			idx[t.Subject] = i
			out = append(out, SubjectStat{Name: t.Subject})
		}
		out[i].Total++
		if t.Completed {
			out[i].Done++
		}
	}
	for i := range out {
		out[i].Percent = int(math.Round(100 * out[i].ratio()))
	}
	return out
}

// SubjectProgress returns per-subject completion ordered by descending
// percent; equal percents keep first-seen order.
func SubjectProgress(tasks []study.Task) []SubjectStat {
	out := tally(tasks)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Percent > out[j].Percent })
	return out
}

// SubjectShare returns task counts per subject in first-seen order.
func SubjectShare(tasks []study.Task) []SubjectStat {
	return tally(tasks)
}

// BestSubject is the subject with the highest completion ratio, first seen
// winning ties, or "None" without tasks.
func BestSubject(tasks []study.Task) string {
	best, bestRatio := NoSubject, -1.0
	for _, s := range tally(tasks) {
		if r := s.ratio(); r > bestRatio {
			best, bestRatio = s.Name, r
		}
	}
	return best
}

// DayCount is one bar of the activity histogram.
type DayCount struct {
	Date  time.Time
	Label string
	Count int
}

// Activity counts completions on each of the last seven calendar days,
// oldest first, today included.
func Activity(tasks []study.Task, now time.Time) []DayCount {
	today := study.DayOf(now)
	out := make([]DayCount, ActivityDays)
	index := make(map[int64]int, ActivityDays)
	for i := range out {
		d := today.AddDate(0, 0, i-(ActivityDays-1))
		out[i] = DayCount{Date: d, Label: d.Format("Mon")}
		index[civilDay(d)] = i
	}
	for _, t := range tasks {
		if !t.Completed || t.CompletedAt == nil {
			continue
		}
		if i, ok := index[civilDay(*t.CompletedAt)]; ok {
			out[i].Count++
		}
	}
	return out
}

// Consistency is the percentage of the histogram days with any activity.
func Consistency(activity []DayCount) int {
	active := 0
	for _, d := range activity {
		if d.Count > 0 {
			active++
		}
	}
	return int(math.Round(100 * float64(active) / ActivityDays))
}

// CompletedCount counts completed tasks.
func CompletedCount(tasks []study.Task) int {
	n := 0
	for _, t := range tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// CompletedOn counts tasks completed on the calendar day of now.
func CompletedOn(tasks []study.Task, now time.Time) int {
	day := civilDay(now)
	n := 0
	for _, t := range tasks {
		if t.Completed && t.CompletedAt != nil && civilDay(*t.CompletedAt) == day {
			n++
		}
	}
	return n
}

func overallRatio(tasks []study.Task) float64 {
	if len(tasks) == 0 {
		return 0
	}
	return float64(CompletedCount(tasks)) / float64(len(tasks))
}

// OverallPercent is the rounded share of completed tasks.
func OverallPercent(tasks []study.Task) int {
	return int(math.Round(100 * overallRatio(tasks)))
}

// FocusGrade maps a completion percentage onto a letter band. Bounds are
// exclusive.
func FocusGrade(percent float64) string {
	switch {
	case percent > 90:
		return "A*"
	case percent > 75:
		return "A"
	case percent > 60:
		return "B"
	case percent > 45:
		return "C"
	}
	return GradeFocusing
}

// AveragePerDay divides completed tasks by the days elapsed since the
// earliest task was created (read from its id), rounded to one decimal.
func AveragePerDay(tasks []study.Task, now time.Time) float64 {
	if len(tasks) == 0 {
		return 0
	}
	start := now
	for _, t := range tasks {
		if at, ok := study.CreatedAt(t.ID); ok && at.Before(start) {
			start = at
		}
	}
	days := math.Max(1, math.Ceil(now.Sub(start).Hours()/24))
	return math.Round(float64(CompletedCount(tasks))/days*10) / 10
}

// DailyGoal is the number of tasks a day should clear: ceil(total/30), at
// least five.
func DailyGoal(total int) int {
	goal := int(math.Ceil(float64(total) / 30))
	if goal < 5 {
		return 5
	}
	return goal
}

// Upcoming returns up to n pending tasks ordered by due date.
func Upcoming(tasks []study.Task, n int) []study.Task {
	var pending []study.Task
	for _, t := range tasks {
		if !t.Completed {
			pending = append(pending, t)
		}
	}
	pending = schedule.SortByDue(pending)
	if len(pending) > n {
		pending = pending[:n]
	}
	return pending
}

// Summary is the row of headline figures on the statistics view.
type Summary struct {
	AveragePerDay float64
	Consistency   int
	BestSubject   string
	Grade         string
}

func Summarize(tasks []study.Task, now time.Time) Summary {
	return Summary{
		AveragePerDay: AveragePerDay(tasks, now),
		Consistency:   Consistency(Activity(tasks, now)),
		BestSubject:   BestSubject(tasks),
		Grade:         FocusGrade(100 * overallRatio(tasks)),
	}
}

// Package schedule projects abstract (week, day) coordinates onto the
// calendar and groups tasks for the weekly timetable.
package schedule

import (
	"sort"
	"time"

	"github.com/sadopc/cramr/internal/study"
)

// DaysInWeek is the number of rows in a timetable week.
const DaysInWeek = 7

// Day is a concrete calendar day of the plan.
type Day struct {
	Date    time.Time
	Weekday string
}

// Label renders the day as "16 Jan".
func (d Day) Label() string {
	return d.Date.Format("2 Jan")
}

// Offset is the number of days between the plan start and (week, day).
func Offset(week, day int) int {
	return (week-1)*DaysInWeek + day
}

// DueDate returns start + (week-1)*7 + day calendar days.
func DueDate(start time.Time, week, day int) time.Time {
	return study.DayOf(start).AddDate(0, 0, Offset(week, day))
}

// DayInfo resolves (week, day) against the plan start date.
func DayInfo(week, day int, cfg study.Settings) Day {
	d := DueDate(cfg.StartDate, week, day)
	return Day{Date: d, Weekday: d.Weekday().String()}
}

// TasksForWeek keeps tasks whose week matches exactly, in source order.
func TasksForWeek(tasks []study.Task, week int) []study.Task {
	var out []study.Task
	for _, t := range tasks {
		if t.Week == week {
			out = append(out, t)
		}
	}
	return out
}

// TasksForDay keeps tasks on exactly (week, day), in source order.
func TasksForDay(tasks []study.Task, week, day int) []study.Task {
	var out []study.Task
	for _, t := range tasks {
		if t.Week == week && t.Day == day {
			out = append(out, t)
		}
	}
	return out
}

// MaxWeek is the highest week any task falls in, or 1.
func MaxWeek(tasks []study.Task) int {
	maxWeek := 1
	for _, t := range tasks {
		if t.Week > maxWeek {
			maxWeek = t.Week
		}
	}
	return maxWeek
}

// Slots splits a day's tasks into the ones that fit the configured
// subjects-per-day grid and the overflow. Generation does not enforce the
// cap, so overflow is reported to the caller rather than dropped.
func Slots(tasks []study.Task, week, day int, cfg study.Settings) (shown, overflow []study.Task) {
	dayTasks := TasksForDay(tasks, week, day)
	n := cfg.SubjectsPerDay
	if n < 0 {
		n = 0
	}
	if len(dayTasks) <= n {
		return dayTasks, nil
	}
	return dayTasks[:n], dayTasks[n:]
}

// SortByDue returns a copy sorted by due date; ties keep source order and
// undated tasks go last.
func SortByDue(tasks []study.Task) []study.Task {
	out := study.Clone(tasks)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DueDate, out[j].DueDate
		if a.IsZero() != b.IsZero() {
			return !a.IsZero()
		}
		return a.Before(b)
	})
	return out
}

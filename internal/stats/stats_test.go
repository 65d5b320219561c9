package stats

import (
	"testing"
	"time"

	"github.com/sadopc/cramr/internal/study"
)

var now = time.Date(2025, 3, 12, 15, 0, 0, 0, time.Local)

func doneAt(id, subject string, at time.Time) study.Task {
	return study.Task{ID: id, Subject: subject, Priority: study.PriorityMedium}.Toggle(at)
}

func pending(id, subject string) study.Task {
	return study.Task{ID: id, Subject: subject, Priority: study.PriorityMedium}
}

func daysAgo(n int) time.Time {
	return now.AddDate(0, 0, -n)
}

// ============================================================
// Streak
// ============================================================

func TestStreak(t *testing.T) {
	tests := []struct {
		name  string
		tasks []study.Task
		want  int
	}{
		{"no tasks", nil, 0},
		{"none completed", []study.Task{pending("a", "Math")}, 0},
		{"today and yesterday", []study.Task{
			doneAt("a", "Math", now),
			doneAt("b", "Math", daysAgo(1)),
		}, 2},
		{"only three days ago", []study.Task{doneAt("a", "Math", daysAgo(3))}, 0},
		{"yesterday only", []study.Task{doneAt("a", "Math", daysAgo(1))}, 1},
		{"gap stops the walk", []study.Task{
			doneAt("a", "Math", now),
			doneAt("b", "Math", daysAgo(1)),
			doneAt("c", "Math", daysAgo(3)),
			doneAt("d", "Math", daysAgo(4)),
		}, 2},
		{"several per day count once", []study.Task{
			doneAt("a", "Math", now),
			doneAt("b", "Physics", now.Add(-time.Hour)),
			doneAt("c", "Math", daysAgo(1)),
			doneAt("d", "Math", daysAgo(2)),
		}, 3},
		{"early morning and late night", []study.Task{
			doneAt("a", "Math", time.Date(2025, 3, 12, 0, 5, 0, 0, time.Local)),
			doneAt("b", "Math", time.Date(2025, 3, 11, 23, 55, 0, 0, time.Local)),
		}, 2},
	}
	for _, tt := range tests {
		if got := Streak(tt.tasks, now); got != tt.want {
			t.Errorf("%s: Streak = %d, want %d", tt.name, got, tt.want)
		}
	}
}

// ============================================================
// Subjects
// ============================================================

func TestSubjectProgress(t *testing.T) {
	tasks := []study.Task{
		doneAt("a", "Math", now),
		pending("b", "Physics"),
		doneAt("c", "Math", now),
		pending("d", "Math"),
		doneAt("e", "Biology", now),
	}
	got := SubjectProgress(tasks)
	if len(got) != 3 {
		t.Fatalf("expected 3 subjects, got %d", len(got))
	}
	if got[0].Name != "Biology" || got[0].Percent != 100 {
		t.Fatalf("first = %+v", got[0])
	}
	if got[1].Name != "Math" || got[1].Percent != 67 || got[1].Done != 2 || got[1].Total != 3 {
		t.Fatalf("Math = %+v, want 67%% (2/3)", got[1])
	}
	if got[2].Name != "Physics" || got[2].Percent != 0 {
		t.Fatalf("last = %+v", got[2])
	}
}

func TestSubjectProgressTiesKeepFirstSeen(t *testing.T) {
	tasks := []study.Task{pending("a", "English"), pending("b", "Spanish")}
	got := SubjectProgress(tasks)
	if got[0].Name != "English" || got[1].Name != "Spanish" {
		t.Fatalf("tie order = %s, %s", got[0].Name, got[1].Name)
	}
}

func TestSubjectShare(t *testing.T) {
	tasks := []study.Task{pending("a", "Physics"), pending("b", "Math"), pending("c", "Physics")}
	got := SubjectShare(tasks)
	if len(got) != 2 || got[0].Name != "Physics" || got[0].Total != 2 || got[1].Total != 1 {
		t.Fatalf("share = %+v", got)
	}
}

func TestBestSubject(t *testing.T) {
	if got := BestSubject(nil); got != "None" {
		t.Fatalf("BestSubject(nil) = %q", got)
	}
	tasks := []study.Task{
		pending("a", "Math"),
		doneAt("b", "Physics", now),
		doneAt("c", "Chemistry", now),
	}
	if got := BestSubject(tasks); got != "Physics" {
		t.Fatalf("BestSubject = %q, want Physics (first of tie)", got)
	}
	if got := BestSubject([]study.Task{pending("a", "Math")}); got != "Math" {
		t.Fatalf("all-zero ratio should still pick first subject, got %q", got)
	}
}

// ============================================================
// Activity
// ============================================================

func TestActivity(t *testing.T) {
	tasks := []study.Task{
		doneAt("a", "Math", now),
		doneAt("b", "Math", now.Add(-2*time.Hour)),
		doneAt("c", "Math", daysAgo(6)),
		doneAt("d", "Math", daysAgo(7)),
		pending("e", "Math"),
	}
	got := Activity(tasks, now)
	if len(got) != 7 {
		t.Fatalf("expected 7 days, got %d", len(got))
	}
	if study.FormatDate(got[6].Date) != "2025-03-12" || got[6].Count != 2 {
		t.Fatalf("today = %+v", got[6])
	}
	if study.FormatDate(got[0].Date) != "2025-03-06" || got[0].Count != 1 {
		t.Fatalf("oldest = %+v", got[0])
	}
	if got[6].Label != "Wed" {
		t.Fatalf("label = %q, want Wed", got[6].Label)
	}
	total := 0
	for _, d := range got {
		total += d.Count
	}
	if total != 3 {
		t.Fatalf("completion 7 days ago should be outside the window, total = %d", total)
	}
}

func TestConsistency(t *testing.T) {
	tasks := []study.Task{
		doneAt("a", "Math", now),
		doneAt("b", "Math", daysAgo(2)),
		doneAt("c", "Math", daysAgo(2)),
	}
	if got := Consistency(Activity(tasks, now)); got != 29 {
		t.Fatalf("Consistency = %d, want 29 (2/7)", got)
	}
	if got := Consistency(Activity(nil, now)); got != 0 {
		t.Fatalf("empty consistency = %d", got)
	}
}

// ============================================================
// Grades and averages
// ============================================================

func TestFocusGrade(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{100, "A*"},
		{90.1, "A*"},
		{90, "A"},
		{75.5, "A"},
		{75, "B"},
		{61, "B"},
		{60, "C"},
		{46, "C"},
		{45, "Focusing..."},
		{0, "Focusing..."},
	}
	for _, tt := range tests {
		if got := FocusGrade(tt.pct); got != tt.want {
			t.Errorf("FocusGrade(%v) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}

func TestAveragePerDay(t *testing.T) {
	if got := AveragePerDay(nil, now); got != 0 {
		t.Fatalf("empty = %v", got)
	}

	created := now.Add(-3 * 24 * time.Hour)
	tasks := []study.Task{
		doneAt(study.NewID(created), "Math", now),
		doneAt(study.NewID(now), "Math", now),
		pending(study.NewID(now), "Math"),
	}
	// 2 completed over 3 days
	if got := AveragePerDay(tasks, now); got != 0.7 {
		t.Fatalf("AveragePerDay = %v, want 0.7", got)
	}
}

func TestAveragePerDayFloorsDenominator(t *testing.T) {
	tasks := []study.Task{
		doneAt(study.NewID(now.Add(-time.Minute)), "Math", now),
		doneAt(study.NewID(now), "Math", now),
	}
	if got := AveragePerDay(tasks, now); got != 2 {
		t.Fatalf("AveragePerDay = %v, want 2", got)
	}
	// ids without timestamps fall back to now
	if got := AveragePerDay([]study.Task{doneAt("x", "Math", now)}, now); got != 1 {
		t.Fatalf("AveragePerDay = %v, want 1", got)
	}
}

func TestOverallPercentAndCounts(t *testing.T) {
	tasks := []study.Task{
		doneAt("a", "Math", now),
		doneAt("b", "Math", daysAgo(1)),
		pending("c", "Math"),
	}
	if got := OverallPercent(tasks); got != 67 {
		t.Fatalf("OverallPercent = %d", got)
	}
	if OverallPercent(nil) != 0 {
		t.Fatal("empty percent should be 0")
	}
	if CompletedCount(tasks) != 2 {
		t.Fatal("CompletedCount")
	}
	if CompletedOn(tasks, now) != 1 {
		t.Fatal("CompletedOn should count only today")
	}
}

func TestDailyGoal(t *testing.T) {
	for _, tt := range []struct{ total, want int }{{0, 5}, {150, 5}, {151, 6}, {300, 10}} {
		if got := DailyGoal(tt.total); got != tt.want {
			t.Errorf("DailyGoal(%d) = %d, want %d", tt.total, got, tt.want)
		}
	}
}

func TestUpcoming(t *testing.T) {
	d1, _ := study.ParseDate("2025-03-20")
	d2, _ := study.ParseDate("2025-03-14")
	d3, _ := study.ParseDate("2025-03-13")
	tasks := []study.Task{
		{ID: "a", DueDate: d1},
		{ID: "b", DueDate: d2},
		doneAt("c", "Math", now),
		{ID: "d", DueDate: d3},
		{ID: "e", DueDate: d1},
	}
	got := Upcoming(tasks, 3)
	if len(got) != 3 || got[0].ID != "d" || got[1].ID != "b" || got[2].ID != "a" {
		t.Fatalf("Upcoming = %+v", got)
	}
}

func TestSummarize(t *testing.T) {
	tasks := []study.Task{
		doneAt(study.NewID(now), "Math", now),
		doneAt(study.NewID(now), "Math", now),
	}
	s := Summarize(tasks, now)
	if s.Grade != "A*" || s.BestSubject != "Math" || s.Consistency != 14 || s.AveragePerDay != 2 {
		t.Fatalf("Summary = %+v", s)
	}
}

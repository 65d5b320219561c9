package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sadopc/cramr/internal/study"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTasks() []study.Task {
	due, _ := study.ParseDate("2025-01-16")
	at := time.Date(2025, 1, 16, 18, 30, 15, 123000000, time.UTC)
	return []study.Task{
		{
			ID: "task-1736150400000-0", Subject: "Math", Topic: "Differentiation",
			DueDate: due, Week: 2, Day: 3, Priority: study.PriorityHigh,
			Completed: true, CompletedAt: &at, Duration: 1.5,
		},
		{
			ID: "task-1736150400000-1", Subject: "Physics", Topic: "Waves",
			DueDate: due, Priority: study.PriorityLow,
		},
		{
			ID: "task-1736150400000-2", Subject: "General", Topic: "Revision",
			Priority: study.PriorityMedium,
		},
	}
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "cramr.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen, should succeed and not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "cramr.db" {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Load / Save
// ============================================================

func TestLoadEmptyReturnsDefaults(t *testing.T) {
	s := newTestStore(t)
	tasks, cfg := s.Load()

	if len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %d", len(tasks))
	}
	def := study.DefaultSettings(time.Now())
	if cfg.DaysPerWeek != def.DaysPerWeek || cfg.HoursPerDay != def.HoursPerDay ||
		cfg.SubjectsPerDay != def.SubjectsPerDay || cfg.CompletionDays != def.CompletionDays {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if !cfg.StartDate.Equal(study.DayOf(time.Now())) {
		t.Fatalf("start date should default to today, got %v", cfg.StartDate)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	tasks := sampleTasks()
	cfg := study.DefaultSettings(time.Now())
	cfg.DaysPerWeek = 5
	cfg.SubjectsPerDay = 4
	cfg.StartDate, _ = study.ParseDate("2025-01-06")
	cfg.SubjectImportance["Physics"] = 5

	if err := s.Save(tasks, cfg); err != nil {
		t.Fatal(err)
	}

	gotTasks, gotCfg := s.Load()
	if len(gotTasks) != len(tasks) {
		t.Fatalf("expected %d tasks, got %d", len(tasks), len(gotTasks))
	}
	for i := range tasks {
		want, got := tasks[i], gotTasks[i]
		if got.ID != want.ID || got.Subject != want.Subject || got.Topic != want.Topic ||
			got.Week != want.Week || got.Day != want.Day || got.Priority != want.Priority ||
			got.Completed != want.Completed || got.Duration != want.Duration {
			t.Fatalf("task %d mismatch:\n got %+v\nwant %+v", i, got, want)
		}
		if !got.DueDate.Equal(want.DueDate) {
			t.Fatalf("task %d due date %v, want %v", i, got.DueDate, want.DueDate)
		}
		if (got.CompletedAt == nil) != (want.CompletedAt == nil) {
			t.Fatalf("task %d CompletedAt presence mismatch", i)
		}
		if want.CompletedAt != nil && !got.CompletedAt.Equal(*want.CompletedAt) {
			t.Fatalf("task %d CompletedAt %v, want %v", i, got.CompletedAt, want.CompletedAt)
		}
	}

	if gotCfg.DaysPerWeek != 5 || gotCfg.SubjectsPerDay != 4 {
		t.Fatalf("settings not persisted: %+v", gotCfg)
	}
	if study.FormatDate(gotCfg.StartDate) != "2025-01-06" {
		t.Fatalf("start date = %v", gotCfg.StartDate)
	}
	if gotCfg.SubjectImportance["Physics"] != 5 || gotCfg.SubjectImportance["Math"] != 3 {
		t.Fatalf("importance not persisted: %v", gotCfg.SubjectImportance)
	}
}

func TestSaveOverwritesWholeCollection(t *testing.T) {
	s := newTestStore(t)
	cfg := study.DefaultSettings(time.Now())
	if err := s.Save(sampleTasks(), cfg); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(sampleTasks()[:1], cfg); err != nil {
		t.Fatal(err)
	}
	tasks, _ := s.Load()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task after overwrite, got %d", len(tasks))
	}
}

func TestSaveEmptyClearsTasks(t *testing.T) {
	s := newTestStore(t)
	cfg := study.DefaultSettings(time.Now())
	s.Save(sampleTasks(), cfg)

	if err := s.Save(nil, cfg); err != nil {
		t.Fatal(err)
	}
	tasks, _ := s.Load()
	if len(tasks) != 0 {
		t.Fatalf("expected empty collection, got %d", len(tasks))
	}
}

func TestSavePreservesInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	tasks := sampleTasks()
	tasks[0], tasks[2] = tasks[2], tasks[0]
	s.Save(tasks, study.DefaultSettings(time.Now()))

	got, err := s.ListTasks()
	if err != nil {
		t.Fatal(err)
	}
	for i := range tasks {
		if got[i].ID != tasks[i].ID {
			t.Fatalf("position %d: got %s, want %s", i, got[i].ID, tasks[i].ID)
		}
	}
}

func TestSaveDuplicateIDFails(t *testing.T) {
	s := newTestStore(t)
	tasks := sampleTasks()
	tasks[1].ID = tasks[0].ID

	if err := s.Save(tasks, study.DefaultSettings(time.Now())); err == nil {
		t.Fatal("expected error for duplicate task id")
	}
}

func TestSaveFailureRollsBack(t *testing.T) {
	s := newTestStore(t)
	cfg := study.DefaultSettings(time.Now())
	s.Save(sampleTasks(), cfg)

	bad := sampleTasks()
	bad[2].ID = bad[0].ID
	s.Save(bad, cfg)

	tasks, _ := s.Load()
	if len(tasks) != 3 {
		t.Fatalf("failed save should leave previous data, got %d tasks", len(tasks))
	}
}

// ============================================================
// Corrupt data falls back to defaults
// ============================================================

func TestLoadCorruptTaskFallsBackToEmpty(t *testing.T) {
	s := newTestStore(t)
	s.Save(sampleTasks(), study.DefaultSettings(time.Now()))
	s.db.Exec(`UPDATE tasks SET due_date = 'not-a-date' WHERE position = 1`)

	tasks, _ := s.Load()
	if tasks != nil {
		t.Fatalf("expected empty tasks for corrupt row, got %d", len(tasks))
	}
}

func TestLoadCompletedWithoutTimestampIsCorrupt(t *testing.T) {
	s := newTestStore(t)
	s.Save(sampleTasks(), study.DefaultSettings(time.Now()))
	s.db.Exec(`UPDATE tasks SET completed_at = NULL WHERE position = 0`)

	tasks, _ := s.Load()
	if tasks != nil {
		t.Fatal("completion invariant violation should be treated as corrupt")
	}
}

func TestLoadCorruptSettingsFallsBackToDefaults(t *testing.T) {
	s := newTestStore(t)
	cfg := study.DefaultSettings(time.Now())
	cfg.HoursPerDay = 12
	s.Save(nil, cfg)
	setSetting(s.db, keySubjectImportance, "{not json")

	_, got := s.Load()
	if got.HoursPerDay != 8 {
		t.Fatalf("expected default hours after corruption, got %d", got.HoursPerDay)
	}
}

func TestLoadClampsOutOfRangeSettings(t *testing.T) {
	s := newTestStore(t)
	setSetting(s.db, keyDaysPerWeek, "12")
	setSetting(s.db, keyCompletionDays, "2")

	_, cfg := s.Load()
	if cfg.DaysPerWeek != 7 || cfg.CompletionDays != 7 {
		t.Fatalf("expected clamped values, got %+v", cfg)
	}
}

// ============================================================
// Settings key/value
// ============================================================

func TestSetSettingUpserts(t *testing.T) {
	s := newTestStore(t)
	setSetting(s.db, keyHoursPerDay, "6")
	setSetting(s.db, keyHoursPerDay, "7")

	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].Value != "7" {
		t.Fatalf("expected one upserted row with 7, got %+v", all)
	}

	_, cfg := s.Load()
	if cfg.HoursPerDay != 7 {
		t.Fatalf("Load should read stored hours, got %d", cfg.HoursPerDay)
	}
}

func TestGetAllSettingsSorted(t *testing.T) {
	s := newTestStore(t)
	s.Save(nil, study.DefaultSettings(time.Now()))

	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 6 {
		t.Fatalf("expected 6 settings, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Key > all[i].Key {
			t.Fatalf("settings not sorted: %s > %s", all[i-1].Key, all[i].Key)
		}
	}
}

package study

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrOutOfRange     = errors.New("value out of range")
	ErrUnknownSubject = errors.New("unknown subject")
)

// Range is an inclusive integer bound for a settings field.
type Range struct {
	Min, Max int
}

func (r Range) Contains(v int) bool { return v >= r.Min && v <= r.Max }

func (r Range) Clamp(v int) int {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

var (
	DaysPerWeekRange    = Range{1, 7}
	HoursPerDayRange    = Range{1, 16}
	SubjectsPerDayRange = Range{1, 8}
	CompletionDaysRange = Range{7, 180}
	ImportanceRange     = Range{1, 5}
)

const DefaultImportance = 3

// Settings is the user's planning configuration.
type Settings struct {
	DaysPerWeek    int
	HoursPerDay    int
	SubjectsPerDay int
	CompletionDays int
	StartDate      time.Time

	SubjectImportance map[string]int
}

// DefaultSettings returns first-run settings anchored at the day of now.
func DefaultSettings(now time.Time) Settings {
	imp := make(map[string]int, len(Subjects))
	for _, s := range Subjects {
		imp[s] = DefaultImportance
	}
	return Settings{
		DaysPerWeek:       7,
		HoursPerDay:       8,
		SubjectsPerDay:    3,
		CompletionDays:    45,
		StartDate:         DayOf(now),
		SubjectImportance: imp,
	}
}

func (s Settings) Clone() Settings {
	imp := make(map[string]int, len(s.SubjectImportance))
	for k, v := range s.SubjectImportance {
		imp[k] = v
	}
	s.SubjectImportance = imp
	return s
}

func setInRange(field string, r Range, v int, dst *int) error {
	if !r.Contains(v) {
		return fmt.Errorf("%s %d not in [%d,%d]: %w", field, v, r.Min, r.Max, ErrOutOfRange)
	}
	*dst = v
	return nil
}

func (s *Settings) SetDaysPerWeek(v int) error {
	return setInRange("days per week", DaysPerWeekRange, v, &s.DaysPerWeek)
}

func (s *Settings) SetHoursPerDay(v int) error {
	return setInRange("hours per day", HoursPerDayRange, v, &s.HoursPerDay)
}

func (s *Settings) SetSubjectsPerDay(v int) error {
	return setInRange("subjects per day", SubjectsPerDayRange, v, &s.SubjectsPerDay)
}

func (s *Settings) SetCompletionDays(v int) error {
	return setInRange("completion days", CompletionDaysRange, v, &s.CompletionDays)
}

func (s *Settings) SetStartDate(t time.Time) error {
	if t.IsZero() {
		return fmt.Errorf("start date: %w", ErrOutOfRange)
	}
	s.StartDate = DayOf(t)
	return nil
}

// SetImportance sets the weight of one enumerated subject.
func (s *Settings) SetImportance(subject string, v int) error {
	if !IsSubject(subject) {
		return fmt.Errorf("%q: %w", subject, ErrUnknownSubject)
	}
	var w int
	if err := setInRange("importance", ImportanceRange, v, &w); err != nil {
		return err
	}
	if s.SubjectImportance == nil {
		s.SubjectImportance = make(map[string]int, len(Subjects))
	}
	s.SubjectImportance[subject] = w
	return nil
}

// Normalize clamps every field into range, drops unknown subjects, fills in
// missing ones and defaults a zero start date to the day of now.
func (s Settings) Normalize(now time.Time) Settings {
	s.DaysPerWeek = DaysPerWeekRange.Clamp(s.DaysPerWeek)
	s.HoursPerDay = HoursPerDayRange.Clamp(s.HoursPerDay)
	s.SubjectsPerDay = SubjectsPerDayRange.Clamp(s.SubjectsPerDay)
	s.CompletionDays = CompletionDaysRange.Clamp(s.CompletionDays)
	if s.StartDate.IsZero() {
		s.StartDate = DayOf(now)
	} else {
		s.StartDate = DayOf(s.StartDate)
	}

	imp := make(map[string]int, len(Subjects))
	for _, subj := range Subjects {
		v, ok := s.SubjectImportance[subj]
		if !ok {
			v = DefaultImportance
		}
		imp[subj] = ImportanceRange.Clamp(v)
	}
	s.SubjectImportance = imp
	return s
}

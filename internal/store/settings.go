package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/sadopc/cramr/internal/study"
)

const (
	keyDaysPerWeek       = "days_per_week"
	keyHoursPerDay       = "hours_per_day"
	keySubjectsPerDay    = "subjects_per_day"
	keyCompletionDays    = "completion_days"
	keyStartDate         = "start_date"
	keySubjectImportance = "subject_importance"
)

type Setting struct {
	Key   string
	Value string
}

func setSetting(q querier, key, value string) error {
	_, err := q.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// GetAllSettings returns the raw key/value rows ordered by key.
func (s *Store) GetAllSettings() ([]Setting, error) {
	return allSettings(s.db)
}

func allSettings(q querier) ([]Setting, error) {
	rows, err := q.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// settingsFromRows overlays stored keys on the defaults. Any unparsable
// value is an error; missing keys keep their default.
func settingsFromRows(rows []Setting, now time.Time) (study.Settings, error) {
	cfg := study.DefaultSettings(now)
	ints := map[string]*int{
		keyDaysPerWeek:    &cfg.DaysPerWeek,
		keyHoursPerDay:    &cfg.HoursPerDay,
		keySubjectsPerDay: &cfg.SubjectsPerDay,
		keyCompletionDays: &cfg.CompletionDays,
	}
	for _, row := range rows {
		if dst, ok := ints[row.Key]; ok {
			v, err := strconv.Atoi(row.Value)
			if err != nil {
				return cfg, fmt.Errorf("setting %s: %w", row.Key, err)
			}
			*dst = v
			continue
		}
		switch row.Key {
		case keyStartDate:
			d, err := study.ParseDate(row.Value)
			if err != nil {
				return cfg, fmt.Errorf("setting %s: %w", row.Key, err)
			}
			cfg.StartDate = d
		case keySubjectImportance:
			imp := make(map[string]int)
			if err := json.Unmarshal([]byte(row.Value), &imp); err != nil {
				return cfg, fmt.Errorf("setting %s: %w", row.Key, err)
			}
			cfg.SubjectImportance = imp
		}
	}
	return cfg.Normalize(now), nil
}

func saveSettings(q querier, cfg study.Settings) error {
	imp, err := json.Marshal(cfg.SubjectImportance)
	if err != nil {
		return fmt.Errorf("marshal importance: %w", err)
	}
	values := []Setting{
		{keyDaysPerWeek, strconv.Itoa(cfg.DaysPerWeek)},
		{keyHoursPerDay, strconv.Itoa(cfg.HoursPerDay)},
		{keySubjectsPerDay, strconv.Itoa(cfg.SubjectsPerDay)},
		{keyCompletionDays, strconv.Itoa(cfg.CompletionDays)},
		{keyStartDate, study.FormatDate(cfg.StartDate)},
		{keySubjectImportance, string(imp)},
	}
	for _, v := range values {
		if err := setSetting(q, v.Key, v.Value); err != nil {
			return fmt.Errorf("save setting %s: %w", v.Key, err)
		}
	}
	return nil
}

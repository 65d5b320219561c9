package store

import (
	"database/sql"
	"log"
	"time"

	"github.com/sadopc/cramr/internal/study"
)

// Load returns the saved tasks and settings. It never fails: unreadable or
// corrupt data is logged and replaced by the defaults, so the UI can always
// start.
func (s *Store) Load() ([]study.Task, study.Settings) {
	now := time.Now()

	tasks, err := s.ListTasks()
	if err != nil {
		log.Printf("[store] tasks unreadable, starting empty: %v", err)
		tasks = nil
	}

	rows, err := s.GetAllSettings()
	if err != nil {
		log.Printf("[store] settings unreadable, using defaults: %v", err)
		return tasks, study.DefaultSettings(now)
	}
	cfg, err := settingsFromRows(rows, now)
	if err != nil {
		log.Printf("[store] settings unreadable, using defaults: %v", err)
		cfg = study.DefaultSettings(now)
	}
	return tasks, cfg
}

// Save overwrites the stored tasks and settings in one transaction.
func (s *Store) Save(tasks []study.Task, cfg study.Settings) error {
	return s.withTx(func(tx *sql.Tx) error {
		if err := replaceTasks(tx, tasks); err != nil {
			return err
		}
		return saveSettings(tx, cfg)
	})
}

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sadopc/cramr/internal/study"
)

// ListTasks returns every stored task in insertion order.
func (s *Store) ListTasks() ([]study.Task, error) {
	return listTasks(s.db)
}

func listTasks(q querier) ([]study.Task, error) {
	rows, err := q.Query(
		`SELECT id, subject, topic, due_date, week, day, priority, completed, completed_at, duration
		 FROM tasks ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []study.Task
	for rows.Next() {
		var t study.Task
		var dueDate, priority string
		var completed int
		var completedAt sql.NullString
		if err := rows.Scan(&t.ID, &t.Subject, &t.Topic, &dueDate, &t.Week, &t.Day,
			&priority, &completed, &completedAt, &t.Duration); err != nil {
			return nil, err
		}

		if dueDate != "" {
			d, err := study.ParseDate(dueDate)
			if err != nil {
				return nil, fmt.Errorf("task %s due date: %w", t.ID, err)
			}
			t.DueDate = d
		}
		p, ok := study.ParsePriority(priority)
		if !ok {
			return nil, fmt.Errorf("task %s: bad priority %q", t.ID, priority)
		}
		t.Priority = p

		t.Completed = completed == 1
		if completedAt.Valid {
			at, err := time.Parse(time.RFC3339Nano, completedAt.String)
			if err != nil {
				return nil, fmt.Errorf("task %s completed_at: %w", t.ID, err)
			}
			t.CompletedAt = &at
		}
		if t.Completed != (t.CompletedAt != nil) {
			return nil, fmt.Errorf("task %s: completion flag and timestamp disagree", t.ID)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// replaceTasks rewrites the whole tasks table.
func replaceTasks(q querier, tasks []study.Task) error {
	if _, err := q.Exec(`DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	for i, t := range tasks {
		var completedAt any
		if t.CompletedAt != nil {
			completedAt = t.CompletedAt.UTC().Format(time.RFC3339Nano)
		}
		completed := 0
		if t.Completed {
			completed = 1
		}
		_, err := q.Exec(
			`INSERT INTO tasks (position, id, subject, topic, due_date, week, day, priority, completed, completed_at, duration)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, t.ID, t.Subject, t.Topic, study.FormatDate(t.DueDate), t.Week, t.Day,
			string(t.Priority), completed, completedAt, t.Duration,
		)
		if err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}
	return nil
}

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/cramr/internal/study"
)

var csvHeader = []string{"ID", "Subject", "Topic", "Due Date", "Week", "Day", "Priority", "Completed", "Completed At", "Duration"}

// WriteCSV writes one row per task in collection order.
func WriteCSV(w io.Writer, tasks []study.Task) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, t := range tasks {
		week, day := "", ""
		if t.Scheduled() {
			week, day = strconv.Itoa(t.Week), strconv.Itoa(t.Day)
		}
		completedAt := ""
		if t.CompletedAt != nil {
			completedAt = t.CompletedAt.Local().Format(time.RFC3339)
		}
		dur := ""
		if t.Duration > 0 {
			dur = formatDuration(int64(math.Round(t.Duration * 3600)))
		}

		row := []string{
			t.ID,
			t.Subject,
			t.Topic,
			study.FormatDate(t.DueDate),
			week,
			day,
			string(t.Priority),
			strconv.FormatBool(t.Completed),
			completedAt,
			dur,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ToCSV writes the task table to path.
func ToCSV(tasks []study.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	if err := WriteCSV(f, tasks); err != nil {
		f.Close()
		return fmt.Errorf("write csv file: %w", err)
	}
	return f.Close()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

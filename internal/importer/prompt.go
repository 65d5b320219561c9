package importer

import (
	"fmt"
	"strings"

	"github.com/sadopc/cramr/internal/study"
)

// SystemPrompt describes the extraction task and the student's planning
// constraints.
func SystemPrompt(cfg study.Settings) string {
	var b strings.Builder
	b.WriteString("You are an expert Cambridge IGCSE education consultant.\n")
	b.WriteString("Analyze the provided study plan (text or image) and extract it into a JSON array of study tasks.\n")
	b.WriteString("Each task has:\n")
	b.WriteString("- subject: one of " + strings.Join(study.Subjects, ", ") + " when it fits, otherwise the subject named in the plan\n")
	b.WriteString("- topic: the specific chapter or topic\n")
	b.WriteString("- week: week number starting at 1\n")
	b.WriteString("- day: day within the week, 0 is the first study day\n")
	b.WriteString("- dueDate: the date in YYYY-MM-DD format\n")
	b.WriteString("- priority: low, medium or high\n")
	b.WriteString("- duration: estimated hours\n\n")

	b.WriteString("Constraints:\n")
	fmt.Fprintf(&b, "- The plan starts on %s and must finish within %d days.\n",
		study.FormatDate(cfg.StartDate), cfg.CompletionDays)
	fmt.Fprintf(&b, "- The student studies %d days per week, %d hours per day.\n",
		cfg.DaysPerWeek, cfg.HoursPerDay)
	fmt.Fprintf(&b, "- Schedule at most %d subjects per day.\n", cfg.SubjectsPerDay)
	b.WriteString("- Subject importance from 1 (low) to 5 (high), give important subjects more sessions:\n")
	for _, s := range study.Subjects {
		if v, ok := cfg.SubjectImportance[s]; ok {
			fmt.Fprintf(&b, "  %s: %d\n", s, v)
		}
	}
	b.WriteString("If the plan has no dates, distribute the tasks over the completion window.\n")
	return b.String()
}

// userPrompt is sent alongside file bytes, or wraps pasted text.
func userPrompt(in Input) string {
	if in.IsFile() {
		return "Extract the study plan from this file."
	}
	return in.Text
}

func motivationPrompt(completed, total int) string {
	return fmt.Sprintf("Current progress: %d/%d study tasks completed for Cambridge IGCSE exams.\n"+
		"Provide a short, 2-sentence highly motivational tip or encouraging message.\n"+
		"Keep it modern, friendly and specific to the stress of exam preparation.", completed, total)
}

// Package remediation implements the suggestion task: given classified
// clauses, ask for one concise, actionable remediation per clause.
package remediation

import (
	"strings"

	"github.com/clauseline/clauseline/internal/domain"
	"github.com/clauseline/clauseline/internal/parse"
	"github.com/clauseline/clauseline/internal/prompt"
)

const promptHeader = `You are a compliance advisor. For each clause provided, produce a concise, actionable suggestion that can reduce the identified risk.
Return ONLY a JSON array where each object includes these fields:
 - clause_id (integer)
 - suggestion (string, reasonably short but actionable)

Example:
[{"clause_id": 5, "suggestion": "Limit force majeure to exclude negligence, and require notice within 10 days"}, {"clause_id": 6, "suggestion": "Add a 30-day cure period for payment defaults before termination"}]

Now provide suggestions for the clauses below:
`

// Task builds remediation prompts and maps parsed entries to Suggestions.
type Task struct {
	previewLen int
}

// NewTask creates the remediation task.
func NewTask(previewLen int) *Task {
	return &Task{previewLen: previewLen}
}

// Name identifies the task in logs.
func (t *Task) Name() string { return "remediation" }

// Prompt renders the suggestion prompt for one batch.
func (t *Task) Prompt(batch []domain.Clause) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	for _, c := range batch {
		b.WriteString(prompt.ClauseLine(c.ID, c.Text, t.previewLen))
	}
	return b.String()
}

// Record maps one parsed entry onto a Suggestion, accepting the "advice"
// alias and substituting the default when the field is missing.
func (t *Task) Record(id int, clauseText string, entry parse.Entry) domain.Suggestion {
	text, ok := entry.String("suggestion", "advice")
	if !ok {
		text = domain.DefaultSuggestion
	}
	return domain.Suggestion{
		ClauseID:   id,
		Suggestion: text,
		Clause:     clauseText,
	}
}

// ErrorRecord produces the placeholder Suggestion for a clause whose batch
// failed.
func (t *Task) ErrorRecord(id int, clauseText, reason string) domain.Suggestion {
	return domain.Suggestion{
		ClauseID:   id,
		Suggestion: "Suggestion generation failed: " + reason,
		Clause:     clauseText,
	}
}

// UnitsFromFindings converts analysis findings back into clause units so
// the remediation pipeline can re-batch them. Finding order is preserved.
func UnitsFromFindings(findings []domain.Finding) []domain.Clause {
	units := make([]domain.Clause, len(findings))
	for i, f := range findings {
		units[i] = domain.Clause{ID: f.ClauseID, Text: f.Clause}
	}
	return units
}

// Package analysis implements the clause classification task: the prompt
// that asks for regulation, risk, and severity per clause, and the mapping
// of parsed entries into Findings.
package analysis

import (
	"fmt"
	"strings"

	"github.com/clauseline/clauseline/internal/domain"
	"github.com/clauseline/clauseline/internal/parse"
	"github.com/clauseline/clauseline/internal/prompt"
)

const promptHeader = `You are a concise legal compliance analyst and an expert in regulatory compliance.

Your task: read each clause provided and strictly identify if it refers to ANY regulatory frameworks,
including but not limited to: GDPR, HIPAA, PCI-DSS, SOC2, CCPA, ISO standards, and other national or international regulations.

Instructions:
1. If a regulation is explicitly named, extract it (e.g., GDPR, HIPAA).
2. If a regulation is implied (e.g., 'data protection laws in the EU'), infer the closest known framework (e.g., GDPR).
3. If no regulation is found, use 'General Legal'.
4. For each clause, return JSON with fields:
   - clause_id (integer)
   - regulation (one of: %s)
   - risk (short description of the primary compliance or legal risk)
   - severity (Low|Medium|High)

Be exhaustive and conservative:
- Do NOT skip any possible regulations.
- If multiple regulations apply, list them all (comma separated).

Return ONLY valid JSON (an array). No explanations, no markdown, no extra keys.

Example output for two clauses:
[{"clause_id": 1, "regulation": "GDPR", "risk": "Personal data transfer without adequate safeguards", "severity": "High"},
{"clause_id": 2, "regulation": "General Legal", "risk": "Ambiguous termination notice period", "severity": "Medium"}]

Now analyze the clauses below:
`

// Task builds classification prompts and maps parsed entries to Findings.
// It satisfies the pipeline task contract for domain.Finding results.
type Task struct {
	previewLen int
}

// NewTask creates the classification task. previewLen bounds how much of
// each clause is embedded in the prompt.
func NewTask(previewLen int) *Task {
	return &Task{previewLen: previewLen}
}

// Name identifies the task in logs.
func (t *Task) Name() string { return "analysis" }

// Prompt renders the classification prompt for one batch. Clause text is
// flattened to a single line and truncated to the preview length.
func (t *Task) Prompt(batch []domain.Clause) string {
	var b strings.Builder
	fmt.Fprintf(&b, promptHeader, strings.Join(domain.Regulations, ", "))
	for _, c := range batch {
		b.WriteString(prompt.ClauseLine(c.ID, c.Text, t.previewLen))
	}
	return b.String()
}

// Record maps one parsed entry onto a Finding, substituting defaults for
// omitted fields and accepting the key aliases models drift toward.
func (t *Task) Record(id int, clauseText string, entry parse.Entry) domain.Finding {
	regulation, ok := entry.String("regulation")
	if !ok {
		regulation = domain.DefaultRegulation
	}
	risk, ok := entry.String("risk", "risk_description")
	if !ok {
		risk = domain.DefaultRisk
	}
	severity, ok := entry.String("severity", "risk_severity")
	if !ok {
		severity = domain.DefaultSeverity
	}

	return domain.Finding{
		ClauseID:   id,
		Regulation: regulation,
		Risk:       risk,
		Severity:   severity,
		Clause:     clauseText,
	}
}

// ErrorRecord produces the placeholder Finding for a clause whose batch
// failed.
func (t *Task) ErrorRecord(id int, clauseText, reason string) domain.Finding {
	return domain.Finding{
		ClauseID:   id,
		Regulation: domain.ErrorRegulation,
		Risk:       reason,
		Severity:   domain.ErrorSeverity,
		Clause:     clauseText,
	}
}

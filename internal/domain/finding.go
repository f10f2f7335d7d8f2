package domain

// Regulations is the label vocabulary offered to the classifier.
// "General Legal" is the catch-all for clauses with no identifiable framework.
var Regulations = []string{
	"GDPR", "HIPAA", "SOX", "PCI-DSS", "FDA", "EMA", "CCPA",
	"Export Controls", "Employment Law", "Tax", "General Legal",
}

// Defaults substituted when a model entry omits a field, and the markers
// used for batch-level failure records.
const (
	DefaultRegulation = "General Legal"
	DefaultRisk       = "Risk analysis incomplete"
	DefaultSeverity   = "Medium"
	DefaultSuggestion = "No suggestion generated"

	ErrorRegulation = "Analysis Error"
	ErrorSeverity   = "Unknown"
)

// Finding is the classification judgment for one clause.
// Exactly one Finding is produced per input Clause, even when the batch
// the clause travelled in failed outright.
type Finding struct {
	ClauseID   int    `json:"clause_id"`
	Regulation string `json:"regulation"`
	Risk       string `json:"risk"`
	Severity   string `json:"severity"`
	Clause     string `json:"clause"`
}

// Suggestion is the remediation judgment for one clause.
type Suggestion struct {
	ClauseID   int    `json:"clause_id"`
	Suggestion string `json:"suggestion"`
	Clause     string `json:"clause"`
}

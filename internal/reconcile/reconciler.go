// Package reconcile maps parsed model entries back to the clauses that
// produced them and fills gaps with error records when a whole batch fails.
package reconcile

import (
	"github.com/clauseline/clauseline/internal/domain"
	"github.com/clauseline/clauseline/internal/parse"
)

// Mapper converts reconciled entries into task-specific records. One
// implementation per pipeline task.
type Mapper[R any] interface {
	// Record builds a result from a successfully parsed entry, already
	// bound to a clause id and its verbatim text.
	Record(id int, clauseText string, entry parse.Entry) R
	// ErrorRecord builds a placeholder result for a clause whose batch
	// failed, carrying the failure reason.
	ErrorRecord(id int, clauseText, reason string) R
}

// Entries binds each parsed entry to a clause id and text. The entry's own
// clause_id wins when present; otherwise the entry's position in the batch
// is used, and entries beyond the batch fall back to the first clause's id.
// Clause text always comes verbatim from the batch when the id matches.
func Entries[R any](m Mapper[R], batch []domain.Clause, entries []parse.Entry) []R {
	results := make([]R, 0, len(entries))
	for idx, entry := range entries {
		id := resolveID(batch, entry, idx)
		results = append(results, m.Record(id, clauseText(batch, entry, id), entry))
	}
	return results
}

// Failure produces one error record per clause in the batch, preserving
// input cardinality when no entries could be recovered.
func Failure[R any](m Mapper[R], batch []domain.Clause, reason string) []R {
	results := make([]R, 0, len(batch))
	for _, c := range batch {
		results = append(results, m.ErrorRecord(c.ID, c.Text, reason))
	}
	return results
}

func resolveID(batch []domain.Clause, entry parse.Entry, idx int) int {
	if id, ok := entry.Int("clause_id", "chunk_id"); ok {
		return id
	}
	if idx < len(batch) {
		return batch[idx].ID
	}
	if len(batch) > 0 {
		return batch[0].ID
	}
	return 0
}

func clauseText(batch []domain.Clause, entry parse.Entry, id int) string {
	for _, c := range batch {
		if c.ID == id {
			return c.Text
		}
	}
	if s, ok := entry.String("clause", "content", "text"); ok {
		return s
	}
	return ""
}

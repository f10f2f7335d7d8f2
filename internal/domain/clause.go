// Package domain defines the core types shared across the clause judgment
// pipeline: input clauses and the structured records produced for them.
package domain

import "encoding/json"

// Clause is one contract clause queued for judgment.
// IDs are stable and unique within a run; ordering is input order and is
// preserved end-to-end through batching, orchestration, and reconciliation.
type Clause struct {
	ID   int    `json:"clause_id"`
	Text string `json:"text"`
}

// clauseAliases mirrors the field names emitted by the ingestion
// collaborators: segmenters produce chunk_id/content, earlier analysis
// output produces clause_id/clause.
type clauseAliases struct {
	ClauseID *int   `json:"clause_id"`
	ChunkID  *int   `json:"chunk_id"`
	Text     string `json:"text"`
	Content  string `json:"content"`
	Clause   string `json:"clause"`
}

// UnmarshalJSON accepts the id and text aliases used by upstream producers.
func (c *Clause) UnmarshalJSON(data []byte) error {
	var aux clauseAliases
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	switch {
	case aux.ClauseID != nil:
		c.ID = *aux.ClauseID
	case aux.ChunkID != nil:
		c.ID = *aux.ChunkID
	}

	switch {
	case aux.Text != "":
		c.Text = aux.Text
	case aux.Content != "":
		c.Text = aux.Content
	default:
		c.Text = aux.Clause
	}

	return nil
}

// Normalize assigns sequential ids (starting at 1) to clauses that arrived
// without one and returns the normalized slice. Input order is preserved.
func Normalize(clauses []Clause) []Clause {
	out := make([]Clause, len(clauses))
	for i, c := range clauses {
		if c.ID == 0 {
			c.ID = i + 1
		}
		out[i] = c
	}
	return out
}

// FromStrings wraps bare clause texts into Clauses with sequential ids.
func FromStrings(texts []string) []Clause {
	out := make([]Clause, len(texts))
	for i, t := range texts {
		out[i] = Clause{ID: i + 1, Text: t}
	}
	return out
}

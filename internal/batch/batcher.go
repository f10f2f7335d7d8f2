// Package batch groups work units into prompt-sized batches under a
// character budget derived from the model token limit.
package batch

import "github.com/clauseline/clauseline/internal/llm/configuration"

// Batcher splits items into batches whose combined text stays under the
// configured character limit.
type Batcher struct {
	charLimit int
}

// New creates a batcher from the batch configuration.
func New(cfg configuration.BatchConfig) *Batcher {
	return &Batcher{charLimit: cfg.CharLimit()}
}

// CharLimit returns the effective per-batch character budget.
func (b *Batcher) CharLimit() int { return b.charLimit }

// Split groups items into ordered batches without exceeding the character
// limit. An item at or over the limit on its own is emitted as a singleton
// batch rather than dropped; relative order is always preserved and no
// item appears twice.
func Split[T any](b *Batcher, items []T, textOf func(T) string) [][]T {
	var batches [][]T
	var current []T
	currentChars := 0

	for _, item := range items {
		size := len(textOf(item))

		if size >= b.charLimit && len(current) > 0 {
			batches = append(batches, current)
			batches = append(batches, []T{item})
			current = nil
			currentChars = 0
			continue
		}

		if currentChars+size <= b.charLimit {
			current = append(current, item)
			currentChars += size
			continue
		}

		if len(current) > 0 {
			batches = append(batches, current)
		}
		current = []T{item}
		currentChars = size
	}

	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

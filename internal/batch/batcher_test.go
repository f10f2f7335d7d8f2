package batch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clauseline/clauseline/internal/llm/configuration"
)

func newTestBatcher(limit int) *Batcher {
	// TokenBudget*CharsPerToken*SafetyMargin == limit.
	return New(configuration.BatchConfig{
		TokenBudget:   limit,
		CharsPerToken: 1,
		SafetyMargin:  1,
	})
}

func identity(s string) string { return s }

func TestSplitGroupsUnderLimit(t *testing.T) {
	b := newTestBatcher(10)

	batches := Split(b, []string{"aaa", "bbb", "ccc", "ddd"}, identity)

	// 3+3+3 fits, the fourth overflows into a new batch.
	require.Len(t, batches, 2)
	assert.Equal(t, []string{"aaa", "bbb", "ccc"}, batches[0])
	assert.Equal(t, []string{"ddd"}, batches[1])
}

func TestSplitOversizedItemBecomesSingleton(t *testing.T) {
	b := newTestBatcher(10)
	huge := strings.Repeat("x", 25)

	batches := Split(b, []string{"aaa", huge, "bbb"}, identity)

	require.Len(t, batches, 3)
	assert.Equal(t, []string{"aaa"}, batches[0])
	assert.Equal(t, []string{huge}, batches[1])
	assert.Equal(t, []string{"bbb"}, batches[2])
}

func TestSplitLeadingOversizedItem(t *testing.T) {
	b := newTestBatcher(10)
	huge := strings.Repeat("x", 25)

	batches := Split(b, []string{huge, "aaa"}, identity)

	require.Len(t, batches, 2)
	assert.Equal(t, []string{huge}, batches[0])
	assert.Equal(t, []string{"aaa"}, batches[1])
}

func TestSplitNeverDropsOrReorders(t *testing.T) {
	b := newTestBatcher(8)
	items := []string{"aa", "bbbb", "c", strings.Repeat("z", 30), "dd", "eee", "f"}

	batches := Split(b, items, identity)

	var flat []string
	for _, batch := range batches {
		require.NotEmpty(t, batch)
		flat = append(flat, batch...)
	}
	assert.Equal(t, items, flat)
}

func TestSplitEmptyInput(t *testing.T) {
	b := newTestBatcher(10)

	assert.Empty(t, Split(b, nil, identity))
}

func TestCharLimitDerivation(t *testing.T) {
	b := New(configuration.BatchConfig{
		TokenBudget:   6000,
		CharsPerToken: 4,
		SafetyMargin:  0.8,
	})

	assert.Equal(t, 19200, b.CharLimit())
}

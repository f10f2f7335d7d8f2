// Package prompt holds small helpers shared by the task prompt builders.
package prompt

import (
	"fmt"
	"strings"
)

// ClauseLine renders one clause for prompt embedding: text flattened to a
// single line and truncated to previewLen with an ellipsis marker.
func ClauseLine(id int, text string, previewLen int) string {
	brief := strings.ReplaceAll(text, "\n", " ")
	ellipsis := ""
	if len(brief) > previewLen {
		brief = brief[:previewLen]
		ellipsis = "..."
	}
	return fmt.Sprintf("\nClause %d: %s%s\n", id, brief, ellipsis)
}

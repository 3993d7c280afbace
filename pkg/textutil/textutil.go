// Package textutil holds string helpers shared by log fields and terminal output.
package textutil

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const ellipsis = "..."

// Truncate flattens newlines and shortens s to at most maxLen cells,
// appending "..." when it was cut. Multi-byte characters are never split.
func Truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if ansi.StringWidth(s) <= maxLen {
		return s
	}
	return ansi.Truncate(s, maxLen, "") + ellipsis
}

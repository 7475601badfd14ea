package diag

import (
	"fmt"
	"strings"
)

// FormatShort renders diagnostics one per line in a stable form suitable
// for golden files and the CLI short format:
//
//	severity CODE path:line:col message
//
// Multi-line messages are flattened; notes are appended as "note" lines
// when includeNotes is set. The bag is expected to be sorted.
func FormatShort(diags []Diagnostic, includeNotes bool) string {
	var sb strings.Builder
	for _, d := range diags {
		writeShortLine(&sb, strings.ToLower(d.Severity.String()), d.Code, d.Primary.String(), d.Message)
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			writeShortLine(&sb, "note", d.Code, n.Span.String(), n.Msg)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func writeShortLine(sb *strings.Builder, sev string, code Code, loc, msg string) {
	msg = strings.Join(strings.Fields(msg), " ")
	fmt.Fprintf(sb, "%s %s %s %s\n", sev, code, loc, msg)
}

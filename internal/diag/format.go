package diag

import (
	"fmt"
	"strings"

	"mwconv/internal/source"
)

// FormatShort renders one line per diagnostic:
//
//	warning LEX1003 page.wiki:3:7 unterminated template invocation
//
// Notes follow their diagnostic as "note" lines when includeNotes is set.
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}
	var b strings.Builder
	for _, d := range diags {
		writeLine(&b, d.Severity.Label(), d.Code, d.Primary, d.Message, fs)
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			writeLine(&b, "note", d.Code, n.Span, n.Msg, fs)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func writeLine(b *strings.Builder, label string, code Code, sp source.Span, msg string, fs *source.FileSet) {
	path := "<unknown>"
	var line, col uint32
	if int(sp.File) < fs.Len() {
		path = fs.Get(sp.File).Path
		start, _ := fs.Resolve(sp)
		line, col = start.Line, start.Col
	}
	fmt.Fprintf(b, "%s %s %s:%d:%d %s\n", label, code.ID(), path, line, col, sanitizeMessage(msg))
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}

package diag

import (
	"strings"

	"github.com/joos1w/joosc/internal/source"
)

// Render formats one diagnostic the way the teacher's internal/errors
// package renders a CompilerError: a "file:line:col: severity: message"
// header, the offending source line, and a caret pointing at the column.
func Render(mgr *source.Manager, s Storage) string {
	var b strings.Builder
	if len(s.Ranges) == 0 {
		b.WriteString(s.Severity.String())
		b.WriteString(": ")
		b.WriteString(s.Message)
		return b.String()
	}
	r := s.Ranges[0]
	name := mgr.Name(r.File)
	b.WriteString(name)
	b.WriteString(":")
	b.WriteString(r.Start.String())
	b.WriteString(": ")
	b.WriteString(s.Severity.String())
	b.WriteString(": ")
	b.WriteString(s.Message)
	b.WriteString("\n")

	if line := sourceLine(mgr, r); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
		col := r.Start.Column
		if col < 1 {
			col = 1
		}
		b.WriteString(strings.Repeat(" ", col-1))
		b.WriteString("^\n")
	}
	return b.String()
}

// RenderAll formats every diagnostic in s, one after another.
func RenderAll(mgr *source.Manager, records []Storage) string {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(Render(mgr, r))
	}
	return b.String()
}

func sourceLine(mgr *source.Manager, r source.Range) string {
	buf := mgr.Buffer(r.File)
	if buf == nil {
		return ""
	}
	lines := strings.Split(string(buf), "\n")
	idx := r.Start.Line - 1
	if idx < 0 || idx >= len(lines) {
		return ""
	}
	return lines[idx]
}

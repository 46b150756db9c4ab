// Package diag implements the Diagnostic Engine collaborator (C3): a
// sequence of structured records with severity, message arguments, and
// source ranges. Rendering (drawing source snippets with carets) is outside
// core scope per spec §1/§6, but internal/diag also carries the teacher's
// own caret-renderer (internal/errors.Format in the retrieval pack) as
// ambient CLI-facing plumbing — see Render in render.go.
package diag

import (
	"fmt"

	"github.com/joos1w/joosc/internal/source"
)

// Severity classifies a diagnostic record.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Storage is one recorded diagnostic: a severity, a formatted message, and
// the source ranges it points at. Multiple ranges let a diagnostic
// highlight e.g. both a use site and its conflicting declaration.
type Storage struct {
	Severity Severity
	Message  string
	Ranges   []source.Range
}

// Engine accumulates diagnostics for a single compiler run. It is not
// goroutine-safe; the core's execution model is single-threaded (spec §5).
type Engine struct {
	records   []Storage
	verbosity int
}

// New returns an empty diagnostic engine.
func New() *Engine {
	return &Engine{}
}

// ReportError records an error-severity diagnostic at loc.
func (e *Engine) ReportError(loc source.Range, format string, args ...any) {
	e.records = append(e.records, Storage{
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Ranges:   []source.Range{loc},
	})
}

// ReportWarning records a warning-severity diagnostic at loc.
func (e *Engine) ReportWarning(loc source.Range, format string, args ...any) {
	e.records = append(e.records, Storage{
		Severity: SeverityWarning,
		Message:  fmt.Sprintf(format, args...),
		Ranges:   []source.Range{loc},
	})
}

// ReportDebug records a debug diagnostic iff the engine's verbosity is at
// least level.
func (e *Engine) ReportDebug(level int, format string, args ...any) {
	if level > e.verbosity {
		return
	}
	e.records = append(e.records, Storage{
		Severity: SeverityDebug,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Verbose sets the debug verbosity threshold.
func (e *Engine) Verbose(level int) {
	e.verbosity = level
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (e *Engine) HasErrors() bool {
	for _, r := range e.records {
		if r.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Records returns every diagnostic recorded so far, in report order.
func (e *Engine) Records() []Storage {
	return e.records
}

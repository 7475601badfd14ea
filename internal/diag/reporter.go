package diag

import (
	"fmt"

	"vigil/internal/source"
)

// Reporter is the minimal contract phases use to hand off diagnostics.
// Implementations: BagReporter (collects into a Bag), CountingReporter
// (wraps another reporter and tallies errors).
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// CountingReporter forwards to Next and counts errors, so a phase can
// decide acceptance without re-scanning the bag.
type CountingReporter struct {
	Next   Reporter
	Errors int
}

func (r *CountingReporter) Report(d Diagnostic) {
	if d.Severity >= SevError {
		r.Errors++
	}
	if r.Next != nil {
		r.Next.Report(d)
	}
}

// Errorf reports a SevError diagnostic through r.
func Errorf(r Reporter, code Code, primary source.Span, format string, args ...any) {
	report(r, SevError, code, primary, format, args...)
}

// Warnf reports a SevWarning diagnostic through r.
func Warnf(r Reporter, code Code, primary source.Span, format string, args ...any) {
	report(r, SevWarning, code, primary, format, args...)
}

func report(r Reporter, sev Severity, code Code, primary source.Span, format string, args ...any) {
	if r == nil {
		return
	}
	r.Report(New(sev, code, primary, fmt.Sprintf(format, args...)))
}

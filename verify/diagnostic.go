// Package verify is the property verifier subsystem (spec.md §4.7):
// per-property Verify(program) -> diagnostics checks, plus the IRVerifier
// registry that composes them. Diagnostic report rendering follows
// kanso-lang's internal/errors reporter in spirit (colorized by severity),
// simplified since IR diagnostics carry an ir.Span rather than source text.
package verify

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/multierr"

	"github.com/pypto-lang/pypto/ir"
)

// Severity classifies a Diagnostic.
type Severity uint8

// Diagnostic severities.
const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Diagnostic is one finding raised by a PropertyVerifier (spec.md §4.7).
type Diagnostic struct {
	Severity Severity
	Rule     string
	Code     string
	Message  string
	Span     ir.Span
}

// String renders d in the wire format spec.md §6 mandates:
// `severity:rule:code: message [at file:line:col]`, with the `:code`
// segment omitted when Code is empty.
func (d Diagnostic) String() string {
	if d.Code != "" {
		return fmt.Sprintf("%s:%s:%s: %s [at %s]", d.Severity, d.Rule, d.Code, d.Message, d.Span)
	}
	return fmt.Sprintf("%s:%s: %s [at %s]", d.Severity, d.Rule, d.Message, d.Span)
}

// Diagnostics is an accumulator a PropertyVerifier appends to. Verifiers
// must never panic or return an error from Verify; every finding, however
// severe, is reported by appending here (spec.md §4.7: "Individual verifiers
// MUST NOT throw; they MUST append diagnostics").
type Diagnostics struct {
	items []Diagnostic
}

// Append records one diagnostic.
func (d *Diagnostics) Append(diag Diagnostic) {
	d.items = append(d.items, diag)
}

// Errorf appends an Error-severity diagnostic.
func (d *Diagnostics) Errorf(rule, code string, span ir.Span, format string, args ...any) {
	d.Append(Diagnostic{Severity: Error, Rule: rule, Code: code, Message: fmt.Sprintf(format, args...), Span: span})
}

// Warnf appends a Warning-severity diagnostic.
func (d *Diagnostics) Warnf(rule, code string, span ir.Span, format string, args ...any) {
	d.Append(Diagnostic{Severity: Warning, Rule: rule, Code: code, Message: fmt.Sprintf(format, args...), Span: span})
}

// Items returns the accumulated diagnostics, in the order they were appended.
func (d *Diagnostics) Items() []Diagnostic {
	return d.items
}

// HasErrors reports whether any accumulated diagnostic is Error severity.
func (d *Diagnostics) HasErrors() bool {
	for _, it := range d.items {
		if it.Severity == Error {
			return true
		}
	}
	return false
}

// ToError folds every Error-severity diagnostic into a single error via
// multierr, or returns nil if none is present (backs VerifyOrThrow, spec.md
// §4.7: "raises ... on any Error-severity diagnostic").
func (d *Diagnostics) ToError() error {
	var err error
	for _, it := range d.items {
		if it.Severity == Error {
			err = multierr.Append(err, fmt.Errorf("%s", it.String()))
		}
	}
	return err
}

// GenerateReport renders diagnostics as a colorized, human-readable report,
// one line per diagnostic, severity-colored the way kanso-lang's error
// reporter colors its error/warning levels.
func GenerateReport(diags []Diagnostic) string {
	var b strings.Builder
	errColor := color.New(color.FgRed, color.Bold).SprintFunc()
	warnColor := color.New(color.FgYellow, color.Bold).SprintFunc()
	for _, d := range diags {
		sev := warnColor(d.Severity.String())
		if d.Severity == Error {
			sev = errColor(d.Severity.String())
		}
		if d.Code != "" {
			fmt.Fprintf(&b, "%s:%s:%s: %s [at %s]\n", sev, d.Rule, d.Code, d.Message, d.Span)
		} else {
			fmt.Fprintf(&b, "%s:%s: %s [at %s]\n", sev, d.Rule, d.Message, d.Span)
		}
	}
	return b.String()
}

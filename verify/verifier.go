package verify

import (
	"github.com/pkg/errors"

	"github.com/pypto-lang/pypto/ir"
	"github.com/pypto-lang/pypto/property"
)

// PropertyVerifier checks a single IRProperty against a program, appending
// any findings to out. It must never panic or return an error: every
// finding is a Diagnostic (spec.md §4.7).
type PropertyVerifier interface {
	Name() string
	Property() property.IRProperty
	Verify(p *ir.Program, out *Diagnostics)
}

// VerificationError wraps the diagnostics from a failed VerifyOrThrow call.
type VerificationError struct {
	Diagnostics []Diagnostic
}

func (e *VerificationError) Error() string {
	return errors.Errorf("verification failed:\n%s", GenerateReport(e.Diagnostics)).Error()
}

type ruleState struct {
	verifier PropertyVerifier
	enabled  bool
}

// IRVerifier is the registry of PropertyVerifiers (spec.md §4.7).
type IRVerifier struct {
	rules map[property.IRProperty]*ruleState
	order []property.IRProperty
}

// NewIRVerifier returns an empty IRVerifier.
func NewIRVerifier() *IRVerifier {
	return &IRVerifier{rules: make(map[property.IRProperty]*ruleState)}
}

// CreateDefault returns an IRVerifier with every built-in verifier
// registered and enabled.
func CreateDefault() *IRVerifier {
	v := NewIRVerifier()
	for _, r := range builtinVerifiers() {
		v.AddRule(r)
	}
	return v
}

// AddRule registers v under its own Property, enabled by default.
func (r *IRVerifier) AddRule(v PropertyVerifier) {
	if _, exists := r.rules[v.Property()]; !exists {
		r.order = append(r.order, v.Property())
	}
	r.rules[v.Property()] = &ruleState{verifier: v, enabled: true}
}

// EnableRule turns on the verifier for prop, if registered.
func (r *IRVerifier) EnableRule(prop property.IRProperty) {
	if rs, ok := r.rules[prop]; ok {
		rs.enabled = true
	}
}

// DisableRule turns off the verifier for prop, if registered.
func (r *IRVerifier) DisableRule(prop property.IRProperty) {
	if rs, ok := r.rules[prop]; ok {
		rs.enabled = false
	}
}

// Verify runs every enabled verifier against p and returns all diagnostics.
func (r *IRVerifier) Verify(p *ir.Program) []Diagnostic {
	var out Diagnostics
	for _, prop := range r.order {
		rs := r.rules[prop]
		if !rs.enabled {
			continue
		}
		rs.verifier.Verify(p, &out)
	}
	return out.Items()
}

// VerifyProperty runs only the verifier registered for prop, if any and
// enabled, and returns its diagnostics.
func (r *IRVerifier) VerifyProperty(p *ir.Program, prop property.IRProperty) []Diagnostic {
	rs, ok := r.rules[prop]
	if !ok || !rs.enabled {
		return nil
	}
	var out Diagnostics
	rs.verifier.Verify(p, &out)
	return out.Items()
}

// VerifyOrThrow runs Verify and returns a *VerificationError if any
// diagnostic is Error severity. The presence check itself is delegated to
// Diagnostics.ToError, which folds the Error-severity subset into one
// multierr error.
func (r *IRVerifier) VerifyOrThrow(p *ir.Program) error {
	diags := r.Verify(p)
	out := Diagnostics{items: diags}
	if out.ToError() == nil {
		return nil
	}
	return &VerificationError{Diagnostics: diags}
}

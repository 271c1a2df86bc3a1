// Package pipeline is the ordered pass list with optional before/after
// property verification (spec.md §4.8).
package pipeline

import (
	"github.com/pkg/errors"

	"github.com/pypto-lang/pypto/ir"
	"github.com/pypto-lang/pypto/pass"
	"github.com/pypto-lang/pypto/property"
	"github.com/pypto-lang/pypto/verify"
)

// VerificationMode controls when Pipeline.Run consults the IRVerifier.
type VerificationMode uint8

// Verification modes.
const (
	None VerificationMode = iota
	Before
	After
	BeforeAndAfter
)

// Pipeline is an ordered sequence of passes run over a Program in turn
// (spec.md §4.8).
type Pipeline struct {
	passes     []pass.Pass
	mode       VerificationMode
	initial    property.Set
	verifier   *verify.IRVerifier
}

// New returns an empty Pipeline. verifier may be nil if mode is None.
func New(mode VerificationMode, verifier *verify.IRVerifier) *Pipeline {
	return &Pipeline{mode: mode, initial: property.NewSet(), verifier: verifier}
}

// SetInitialProperties records the properties already known to hold of the
// program Run will be called on.
func (p *Pipeline) SetInitialProperties(props property.Set) {
	p.initial = props
}

// SetVerificationMode changes when Run consults the IRVerifier, so a caller
// can build a Pipeline first and decide its verification mode afterward
// (spec.md §6's `pipeline.SetVerificationMode(m)`).
func (p *Pipeline) SetVerificationMode(mode VerificationMode) {
	p.mode = mode
}

// AddPass appends a pass to the end of the pipeline (spec.md §6's
// `pipeline.AddPass(p)`).
func (p *Pipeline) AddPass(ps pass.Pass) {
	p.passes = append(p.passes, ps)
}

// GetPassNames enumerates the pipeline's passes, in order (spec.md §4.8,
// "used by debug CLIs").
func (p *Pipeline) GetPassNames() []string {
	names := make([]string, len(p.passes))
	for i, ps := range p.passes {
		names[i] = ps.Name()
	}
	return names
}

// Run executes every pass in order against program, verifying properties
// around each pass according to the pipeline's VerificationMode (spec.md
// §4.8's Run algorithm).
func (p *Pipeline) Run(program *ir.Program) (*ir.Program, error) {
	state := p.initial
	current := program
	for _, ps := range p.passes {
		contract := ps.Contract()

		if p.mode == Before || p.mode == BeforeAndAfter {
			if err := p.verifyProperties(current, contract.Required, ps.Name(), "required"); err != nil {
				return nil, err
			}
		}

		next, err := ps.Run(current)
		if err != nil {
			return nil, errors.Wrapf(err, "pass %s", ps.Name())
		}
		current = next
		state = state.With(contract.Invalidated, contract.Produced)

		if p.mode == After || p.mode == BeforeAndAfter {
			if err := p.verifyProperties(current, contract.Produced, ps.Name(), "produced"); err != nil {
				return nil, err
			}
		}
	}
	return current, nil
}

// verifyProperties runs the verifier registered for each property in props
// and fails on the first Error diagnostic. A property with no registered
// verifier is silently skipped: spec.md §4.8 records this as a deliberate
// open-question resolution (a missing verifier is not itself an error).
func (p *Pipeline) verifyProperties(program *ir.Program, props property.Set, passName, phase string) error {
	if p.verifier == nil {
		return nil
	}
	for prop := range props {
		diags := p.verifier.VerifyProperty(program, prop)
		for _, d := range diags {
			if d.Severity == verify.Error {
				return errors.Errorf("pass %s: %s property %s failed verification:\n%s",
					passName, phase, prop, verify.GenerateReport(diags))
			}
		}
	}
	return nil
}

package passes

import (
	"github.com/pypto-lang/pypto/ir"
	"github.com/pypto-lang/pypto/pass"
	"github.com/pypto-lang/pypto/property"
	"github.com/pypto-lang/pypto/verify"
)

// RunVerifier wraps a full IRVerifier pass as a no-op-transform pipeline
// stage: it runs every enabled rule and fails the pipeline with a
// *verify.VerificationError on the first Error-severity diagnostic, letting
// a Pipeline schedule a verification checkpoint anywhere in its pass list
// (spec.md's run_verifier(disabled_rules?) factory name). disabledRules are
// disabled for the duration of this checkpoint and re-enabled once it
// finishes; a rule a caller had already disabled elsewhere on the shared
// verifier comes back enabled too, so give RunVerifier stages their own
// verify.IRVerifier when that distinction matters.
func RunVerifier(v *verify.IRVerifier, disabledRules ...property.IRProperty) pass.Pass {
	return pass.CreateProgramPass("RunVerifier", property.Contract{}, func(p *ir.Program) (*ir.Program, error) {
		for _, prop := range disabledRules {
			v.DisableRule(prop)
		}
		err := v.VerifyOrThrow(p)
		for _, prop := range disabledRules {
			v.EnableRule(prop)
		}
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}

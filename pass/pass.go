// Package pass defines the pimpl-style Pass value type and its two factory
// adapters (spec.md §4.6), grounded on original_source/include/pypto/ir/transforms/passes.h's
// PassNode/CreateFunctionPass/CreateProgramPass split.
package pass

import (
	"github.com/pypto-lang/pypto/ir"
	"github.com/pypto-lang/pypto/property"
)

// Impl is the abstract Program -> Program operation a Pass wraps, plus its
// declared property contract.
type Impl interface {
	Name() string
	Contract() property.Contract
	Run(p *ir.Program) (*ir.Program, error)
}

// Pass is a value-type handle around an Impl (pimpl, spec.md §4.6): copying
// a Pass copies the handle, never the underlying transform.
type Pass struct {
	impl Impl
}

// New wraps impl in a Pass.
func New(impl Impl) Pass {
	return Pass{impl: impl}
}

// Name returns the wrapped Impl's name.
func (p Pass) Name() string { return p.impl.Name() }

// Contract returns the wrapped Impl's property contract.
func (p Pass) Contract() property.Contract { return p.impl.Contract() }

// Run applies the pass, returning a new Program; the input is never mutated.
func (p Pass) Run(prog *ir.Program) (*ir.Program, error) {
	return p.impl.Run(prog)
}

type funcPass struct {
	name      string
	contract  property.Contract
	transform func(*ir.Function) (*ir.Function, error)
}

func (fp *funcPass) Name() string                    { return fp.name }
func (fp *funcPass) Contract() property.Contract      { return fp.contract }

func (fp *funcPass) Run(p *ir.Program) (*ir.Program, error) {
	out := ir.NewProgram()
	for _, fn := range p.Functions() {
		newFn, err := fp.transform(fn)
		if err != nil {
			return nil, err
		}
		out.AddFunction(newFn)
	}
	return out, nil
}

// CreateFunctionPass builds a Pass that applies transform to every function
// in the program independently, in insertion order, assembling a new
// Program from the results (spec.md §4.6: "used by >=90% of passes").
func CreateFunctionPass(name string, contract property.Contract, transform func(*ir.Function) (*ir.Function, error)) Pass {
	return New(&funcPass{name: name, contract: contract, transform: transform})
}

type programPass struct {
	name      string
	contract  property.Contract
	transform func(*ir.Program) (*ir.Program, error)
}

func (pp *programPass) Name() string                    { return pp.name }
func (pp *programPass) Contract() property.Contract      { return pp.contract }
func (pp *programPass) Run(p *ir.Program) (*ir.Program, error) { return pp.transform(p) }

// CreateProgramPass builds a Pass with full whole-program access, used by
// passes that need to see and rewrite more than one function at a time
// (ConvertTensorToBlockOps, RunVerifier; spec.md §4.6).
func CreateProgramPass(name string, contract property.Contract, transform func(*ir.Program) (*ir.Program, error)) Pass {
	return New(&programPass{name: name, contract: contract, transform: transform})
}

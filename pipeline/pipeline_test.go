package pipeline_test

import (
	"testing"

	"github.com/pypto-lang/pypto/ir"
	"github.com/pypto-lang/pypto/pass"
	"github.com/pypto-lang/pypto/pipeline"
	"github.com/pypto-lang/pypto/property"
	"github.com/pypto-lang/pypto/verify"
)

func simpleProgram() *ir.Program {
	self := &ir.GlobalVar{NameV: "f", TypeV: &ir.FunctionType{}}
	fn := ir.NewFunction(self, nil, nil, &ir.ReturnStmt{}, ir.Opaque, ir.Span{})
	p := ir.NewProgram()
	p.AddFunction(fn)
	return p
}

func TestPipelineRunsPassesInOrder(t *testing.T) {
	var order []string
	mark := func(name string) pass.Pass {
		return pass.CreateProgramPass(name, property.Contract{}, func(p *ir.Program) (*ir.Program, error) {
			order = append(order, name)
			return p, nil
		})
	}
	pl := pipeline.New(pipeline.None, nil)
	pl.AddPass(mark("first"))
	pl.AddPass(mark("second"))
	if _, err := pl.Run(simpleProgram()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("got order %v, want [first second]", order)
	}
	if names := pl.GetPassNames(); len(names) != 2 {
		t.Errorf("GetPassNames returned %v, want 2 entries", names)
	}
}

func TestPipelinePropagatesPassError(t *testing.T) {
	failing := pass.CreateProgramPass("fails", property.Contract{}, func(p *ir.Program) (*ir.Program, error) {
		return nil, &ir.InvariantViolationError{Invariant: "x", Detail: "boom"}
	})
	pl := pipeline.New(pipeline.None, nil)
	pl.AddPass(failing)
	if _, err := pl.Run(simpleProgram()); err == nil {
		t.Fatal("expected an error from the failing pass")
	}
}

func TestPipelineBeforeVerificationPassesWhenRequiredPropertyHolds(t *testing.T) {
	v := verify.CreateDefault()
	needsSSA := pass.CreateProgramPass("needs-ssa",
		property.Contract{Required: property.NewSet(property.SSAForm)},
		func(p *ir.Program) (*ir.Program, error) { return p, nil })

	pl := pipeline.New(pipeline.Before, v)
	pl.AddPass(needsSSA)
	// SSAForm's verifier is registered, but this program (one param-less
	// function with no assignments) is trivially SSA, so this should pass
	// cleanly: verifyProperties only fails on an actual Error diagnostic.
	if _, err := pl.Run(simpleProgram()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestPipelineAfterVerificationRunsProducedProperty(t *testing.T) {
	v := verify.CreateDefault()
	breaksSSA := pass.CreateFunctionPass("breaks-ssa",
		property.Contract{Produced: property.NewSet(property.SSAForm)},
		func(fn *ir.Function) (*ir.Function, error) {
			x := &ir.Var{NameV: "x", TypeV: ir.ScalarType{DType: ir.INT64}}
			val := &ir.ConstInt{Value: 1, TypeV: ir.ScalarType{DType: ir.INT64}}
			body := &ir.SeqStmts{Stmts: []ir.Stmt{
				&ir.AssignStmt{VarV: x, Value: val},
				&ir.AssignStmt{VarV: x, Value: val},
				&ir.ReturnStmt{},
			}}
			return ir.NewFunction(fn.Self, fn.Params, fn.Returns, body, fn.Kind, fn.SpanV), nil
		})

	pl := pipeline.New(pipeline.After, v)
	pl.AddPass(breaksSSA)
	if _, err := pl.Run(simpleProgram()); err == nil {
		t.Fatal("expected After-mode verification to catch the double assignment")
	}
}

func TestPipelineSetInitialProperties(t *testing.T) {
	pl := pipeline.New(pipeline.None, nil)
	pl.SetInitialProperties(property.NewSet(property.TypeChecked))
	noop := pass.CreateProgramPass("noop", property.Contract{}, func(p *ir.Program) (*ir.Program, error) { return p, nil })
	pl.AddPass(noop)
	if _, err := pl.Run(simpleProgram()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

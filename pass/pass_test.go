package pass_test

import (
	"testing"

	"github.com/pypto-lang/pypto/ir"
	"github.com/pypto-lang/pypto/pass"
	"github.com/pypto-lang/pypto/property"
)

func simpleFunction(name string) *ir.Function {
	self := &ir.GlobalVar{NameV: name, TypeV: &ir.FunctionType{}}
	ret := &ir.ReturnStmt{}
	return ir.NewFunction(self, nil, nil, ret, ir.Opaque, ir.Span{})
}

func TestCreateFunctionPassRunsOverEveryFunction(t *testing.T) {
	contract := property.Contract{Produced: property.NewSet(property.TypeChecked)}
	renamed := 0
	p := pass.CreateFunctionPass("rename", contract, func(fn *ir.Function) (*ir.Function, error) {
		renamed++
		newSelf := &ir.GlobalVar{NameV: fn.Self.NameV + "_x", TypeV: fn.Self.TypeV}
		return ir.NewFunction(newSelf, fn.Params, fn.Returns, fn.Body, fn.Kind, fn.SpanV), nil
	})

	prog := ir.NewProgram()
	prog.AddFunction(simpleFunction("a"))
	prog.AddFunction(simpleFunction("b"))

	out, err := p.Run(prog)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if renamed != 2 {
		t.Errorf("transform ran %d times, want 2", renamed)
	}
	if out.Len() != 2 {
		t.Errorf("output program has %d functions, want 2", out.Len())
	}
	if _, ok := out.FunctionByName("a_x"); !ok {
		t.Error("expected a function named a_x in the output")
	}
	if p.Name() != "rename" {
		t.Errorf("got name %q, want rename", p.Name())
	}
	if !p.Contract().Produced.Has(property.TypeChecked) {
		t.Error("Contract() should return what CreateFunctionPass was given")
	}
}

func TestCreateFunctionPassPropagatesError(t *testing.T) {
	wantErr := &ir.InvariantViolationError{Invariant: "test", Detail: "boom"}
	p := pass.CreateFunctionPass("fails", property.Contract{}, func(fn *ir.Function) (*ir.Function, error) {
		return nil, wantErr
	})
	prog := ir.NewProgram()
	prog.AddFunction(simpleFunction("a"))
	if _, err := p.Run(prog); err != wantErr {
		t.Errorf("got error %v, want %v", err, wantErr)
	}
}

func TestCreateProgramPassReceivesWholeProgram(t *testing.T) {
	var seenLen int
	p := pass.CreateProgramPass("see-all", property.Contract{}, func(prog *ir.Program) (*ir.Program, error) {
		seenLen = prog.Len()
		return prog, nil
	})
	prog := ir.NewProgram()
	prog.AddFunction(simpleFunction("a"))
	prog.AddFunction(simpleFunction("b"))
	prog.AddFunction(simpleFunction("c"))
	if _, err := p.Run(prog); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if seenLen != 3 {
		t.Errorf("program pass saw %d functions, want 3", seenLen)
	}
}

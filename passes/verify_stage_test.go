package passes

import (
	"testing"

	"github.com/pypto-lang/pypto/ir"
	"github.com/pypto-lang/pypto/property"
	"github.com/pypto-lang/pypto/verify"
)

func TestRunVerifierPassesCleanProgram(t *testing.T) {
	x := &ir.Var{NameV: "x", TypeV: scalarI64()}
	body := &ir.SeqStmts{Stmts: []ir.Stmt{
		&ir.AssignStmt{VarV: x, Value: &ir.ConstInt{Value: 1, TypeV: scalarI64()}},
		&ir.ReturnStmt{Values: []ir.Expr{x}},
	}}
	self := &ir.GlobalVar{NameV: "f", TypeV: &ir.FunctionType{}}
	fn := ir.NewFunction(self, nil, []ir.Type{scalarI64()}, body, ir.Opaque, ir.Span{})

	v := verify.CreateDefault()
	out, err := RunVerifier(v).Run(wrapProgram(fn))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Len() != 1 {
		t.Errorf("RunVerifier should pass the program through unchanged")
	}
}

func TestRunVerifierFailsOnTypeMismatch(t *testing.T) {
	x := &ir.Var{NameV: "x", TypeV: scalarI64()}
	body := &ir.SeqStmts{Stmts: []ir.Stmt{
		&ir.AssignStmt{VarV: x, Value: &ir.ConstFloat{Value: 1, TypeV: ir.ScalarType{DType: ir.FP32}}},
		&ir.ReturnStmt{},
	}}
	self := &ir.GlobalVar{NameV: "f", TypeV: &ir.FunctionType{}}
	fn := ir.NewFunction(self, nil, nil, body, ir.Opaque, ir.Span{})

	v := verify.CreateDefault()
	_, err := RunVerifier(v).Run(wrapProgram(fn))
	if err == nil {
		t.Fatal("expected RunVerifier to fail on the type mismatch")
	}
	if _, ok := err.(*verify.VerificationError); !ok {
		t.Errorf("got %T, want *verify.VerificationError", err)
	}
}

func TestRunVerifierRestoresDisabledRulesAfterwards(t *testing.T) {
	x := &ir.Var{NameV: "x", TypeV: scalarI64()}
	body := &ir.SeqStmts{Stmts: []ir.Stmt{
		&ir.AssignStmt{VarV: x, Value: &ir.ConstFloat{Value: 1, TypeV: ir.ScalarType{DType: ir.FP32}}},
		&ir.ReturnStmt{},
	}}
	self := &ir.GlobalVar{NameV: "f", TypeV: &ir.FunctionType{}}
	fn := ir.NewFunction(self, nil, nil, body, ir.Opaque, ir.Span{})

	v := verify.CreateDefault()
	out, err := RunVerifier(v, property.TypeChecked).Run(wrapProgram(fn))
	if err != nil {
		t.Fatalf("Run with TypeChecked disabled should pass: %v", err)
	}
	if out.Len() != 1 {
		t.Fatal("program should pass through")
	}

	// The rule should be re-enabled for any later use of the same verifier.
	_, err = RunVerifier(v).Run(wrapProgram(fn))
	if err == nil {
		t.Fatal("expected the re-enabled TypeChecked rule to catch the mismatch on a later checkpoint")
	}
}

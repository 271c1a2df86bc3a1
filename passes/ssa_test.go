package passes

import (
	"testing"

	"github.com/pypto-lang/pypto/ir"
)

func scalarI64() ir.Type { return ir.ScalarType{DType: ir.INT64} }

func wrapProgram(fn *ir.Function) *ir.Program {
	p := ir.NewProgram()
	p.AddFunction(fn)
	return p
}

func TestConvertToSSARenumbersRedefinitions(t *testing.T) {
	x := &ir.Var{NameV: "x", TypeV: scalarI64()}
	one := &ir.ConstInt{Value: 1, TypeV: scalarI64()}
	body := &ir.SeqStmts{Stmts: []ir.Stmt{
		&ir.AssignStmt{VarV: x, Value: one},
		&ir.AssignStmt{VarV: x, Value: &ir.BinaryExpr{Op: ir.Add, Left: x, Right: one, ResultType: scalarI64()}},
		&ir.ReturnStmt{Values: []ir.Expr{x}},
	}}
	self := &ir.GlobalVar{NameV: "f", TypeV: &ir.FunctionType{}}
	fn := ir.NewFunction(self, nil, []ir.Type{scalarI64()}, body, ir.Opaque, ir.Span{})

	out, err := ConvertToSSA().Run(wrapProgram(fn))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	outFn, _ := out.Function(self)
	seq := outFn.Body.(*ir.SeqStmts)
	first := seq.Stmts[0].(*ir.AssignStmt)
	second := seq.Stmts[1].(*ir.AssignStmt)
	if first.VarV.NameV == second.VarV.NameV {
		t.Fatalf("the second assignment to x should get a fresh name, got %q twice", first.VarV.NameV)
	}
	ret := seq.Stmts[2].(*ir.ReturnStmt)
	if ret.Values[0].(*ir.Var) != second.VarV {
		t.Error("the return should reference the most recent definition of x")
	}
	// The second assignment's RHS references the pre-redefinition x.
	bin := second.Value.(*ir.BinaryExpr)
	if bin.Left.(*ir.Var) != first.VarV {
		t.Error("the RHS of the second assignment should still reference the first definition")
	}
}

func TestConvertToSSALeavesParamsAlone(t *testing.T) {
	p := &ir.Var{NameV: "p", TypeV: scalarI64()}
	body := &ir.ReturnStmt{Values: []ir.Expr{p}}
	self := &ir.GlobalVar{NameV: "f", TypeV: &ir.FunctionType{}}
	fn := ir.NewFunction(self, []*ir.Var{p}, []ir.Type{scalarI64()}, body, ir.Opaque, ir.Span{})

	out, err := ConvertToSSA().Run(wrapProgram(fn))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	outFn, _ := out.Function(self)
	if outFn.Params[0] != p {
		t.Error("params should not be renamed, only redefinitions")
	}
}

func TestConvertToSSABranchesDoNotLeakRenames(t *testing.T) {
	x := &ir.Var{NameV: "x", TypeV: scalarI64()}
	cond := &ir.ConstBool{Value: true, TypeV: ir.ScalarType{DType: ir.BOOL}}
	one := &ir.ConstInt{Value: 1, TypeV: scalarI64()}

	thenBranch := &ir.AssignStmt{VarV: x, Value: one}
	after := &ir.ReturnStmt{Values: []ir.Expr{x}}
	body := &ir.SeqStmts{Stmts: []ir.Stmt{
		&ir.IfStmt{Cond: cond, Then: thenBranch},
		after,
	}}
	self := &ir.GlobalVar{NameV: "f", TypeV: &ir.FunctionType{}}
	fn := ir.NewFunction(self, []*ir.Var{x}, []ir.Type{scalarI64()}, body, ir.Opaque, ir.Span{})

	out, err := ConvertToSSA().Run(wrapProgram(fn))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	outFn, _ := out.Function(self)
	seq := outFn.Body.(*ir.SeqStmts)
	ret := seq.Stmts[1].(*ir.ReturnStmt)
	if ret.Values[0].(*ir.Var) != x {
		t.Error("the rename inside the then-branch must not leak past the IfStmt")
	}
}

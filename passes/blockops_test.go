package passes

import (
	"testing"

	"github.com/pypto-lang/pypto/convregistry"
	"github.com/pypto-lang/pypto/ir"
	"github.com/pypto-lang/pypto/opregistry"
)

func newConvTestRegistries(t *testing.T) (*opregistry.Registry, *convregistry.Registry) {
	ops := newTestOps(t)
	convs := convregistry.New()
	convregistry.RegisterBaseline(convs, ops)
	return ops, convs
}

func tensorArg(name string) *ir.Var {
	shape := []ir.Expr{&ir.ConstInt{Value: 4, TypeV: scalarI64()}}
	return &ir.Var{NameV: name, TypeV: &ir.TensorType{Shape: shape, DType: ir.FP32, Space: ir.DDR}}
}

func TestConvertTensorToBlockOpsLowersIncoreBody(t *testing.T) {
	ops, convs := newConvTestRegistries(t)
	a := tensorArg("a")

	call, err := ops.Create("tensor.exp", []ir.Expr{a}, nil, ir.Span{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	out := &ir.Var{NameV: "out", TypeV: call.Type()}
	body := &ir.SeqStmts{Stmts: []ir.Stmt{
		&ir.AssignStmt{VarV: out, Value: call},
		&ir.ReturnStmt{Values: []ir.Expr{out}},
	}}
	self := &ir.GlobalVar{NameV: "k", TypeV: &ir.FunctionType{}}
	fn := ir.NewFunction(self, []*ir.Var{a}, []ir.Type{a.TypeV}, body, ir.InCore, ir.Span{})

	outProg, err := ConvertTensorToBlockOps(ops, convs).Run(wrapProgram(fn))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	outFn, ok := outProg.Function(self)
	if !ok {
		t.Fatal("expected the InCore function to remain in the program")
	}
	// One output tensor buffer should have been appended as an extra param.
	if len(outFn.Params) != 2 {
		t.Fatalf("got %d params, want 2 (original tensor + appended output buffer)", len(outFn.Params))
	}
	seq := outFn.Body.(*ir.SeqStmts)
	var sawLoad, sawBlockExp, sawStore bool
	for _, stmt := range seq.Stmts {
		assign, ok := stmt.(*ir.AssignStmt)
		if !ok {
			continue
		}
		call, ok := assign.Value.(*ir.Call)
		if !ok {
			continue
		}
		switch call.Target.OpName() {
		case "block.load":
			sawLoad = true
		case "block.exp":
			sawBlockExp = true
		case "block.store":
			sawStore = true
		}
	}
	if !sawLoad || !sawBlockExp || !sawStore {
		t.Errorf("expected block.load, block.exp and block.store in the lowered body, got load=%v exp=%v store=%v", sawLoad, sawBlockExp, sawStore)
	}
}

func TestConvertTensorToBlockOpsUpdatesCallSites(t *testing.T) {
	ops, convs := newConvTestRegistries(t)
	a := tensorArg("a")
	call, err := ops.Create("tensor.exp", []ir.Expr{a}, nil, ir.Span{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	kernelOut := &ir.Var{NameV: "out", TypeV: call.Type()}
	kernelBody := &ir.SeqStmts{Stmts: []ir.Stmt{
		&ir.AssignStmt{VarV: kernelOut, Value: call},
		&ir.ReturnStmt{Values: []ir.Expr{kernelOut}},
	}}
	kernelSelf := &ir.GlobalVar{NameV: "k", TypeV: &ir.FunctionType{Params: []ir.Type{a.TypeV}, Returns: []ir.Type{a.TypeV}}}
	kernelFn := ir.NewFunction(kernelSelf, []*ir.Var{a}, []ir.Type{a.TypeV}, kernelBody, ir.InCore, ir.Span{})

	b := tensorArg("b")
	kernelCall := &ir.Call{Target: kernelSelf, Args: []ir.Expr{b}, ResultType: a.TypeV}
	res := &ir.Var{NameV: "res", TypeV: a.TypeV}
	orchBody := &ir.SeqStmts{Stmts: []ir.Stmt{
		&ir.AssignStmt{VarV: res, Value: kernelCall},
		&ir.ReturnStmt{Values: []ir.Expr{res}},
	}}
	orchSelf := &ir.GlobalVar{NameV: "orch", TypeV: &ir.FunctionType{}}
	orchFn := ir.NewFunction(orchSelf, []*ir.Var{b}, []ir.Type{a.TypeV}, orchBody, ir.Orchestration, ir.Span{})

	prog := ir.NewProgram()
	prog.AddFunction(kernelFn)
	prog.AddFunction(orchFn)

	outProg, err := ConvertTensorToBlockOps(ops, convs).Run(prog)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	outOrch, ok := outProg.Function(orchSelf)
	if !ok {
		t.Fatal("expected the orchestration function to remain in the program")
	}
	seq := outOrch.Body.(*ir.SeqStmts)
	var sawCreate, sawRewrittenCall bool
	for _, stmt := range seq.Stmts {
		assign, ok := stmt.(*ir.AssignStmt)
		if !ok {
			continue
		}
		call, ok := assign.Value.(*ir.Call)
		if !ok {
			continue
		}
		if op, ok := call.Target.(*ir.Op); ok && op.OpName() == "tensor.create" {
			sawCreate = true
		}
		if gv, ok := call.Target.(*ir.GlobalVar); ok && gv == kernelSelf {
			if len(call.Args) != 2 {
				t.Errorf("rewritten call should carry the extra output buffer arg, got %d args", len(call.Args))
			}
			sawRewrittenCall = true
		}
	}
	if !sawCreate {
		t.Error("expected a tensor.create statement supplying the output buffer")
	}
	if !sawRewrittenCall {
		t.Error("expected the call to the transformed kernel to remain, now with the extra arg")
	}
}

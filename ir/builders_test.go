package ir_test

import (
	"testing"

	"github.com/pypto-lang/pypto/ir"
)

func TestNewAssignStmtTypeMatch(t *testing.T) {
	v := &ir.Var{NameV: "x", TypeV: ir.ScalarType{DType: ir.INT64}}
	val := &ir.ConstInt{Value: 1, TypeV: ir.ScalarType{DType: ir.INT64}}
	stmt, err := ir.NewAssignStmt(v, val, ir.Span{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stmt.VarV != v || stmt.Value != val {
		t.Errorf("AssignStmt did not retain its Var/Value as given")
	}
}

func TestNewAssignStmtTypeMismatch(t *testing.T) {
	v := &ir.Var{NameV: "x", TypeV: ir.ScalarType{DType: ir.INT64}}
	val := &ir.ConstFloat{Value: 1, TypeV: ir.ScalarType{DType: ir.FP32}}
	_, err := ir.NewAssignStmt(v, val, ir.Span{})
	if err == nil {
		t.Fatal("expected a type mismatch error, got nil")
	}
	if _, ok := err.(*ir.TypeMismatchError); !ok {
		t.Errorf("expected *ir.TypeMismatchError, got %T", err)
	}
}

func TestNewReturnStmtArityMismatch(t *testing.T) {
	vals := []ir.Expr{&ir.ConstInt{Value: 1, TypeV: ir.ScalarType{DType: ir.INT64}}}
	returnTypes := []ir.Type{ir.ScalarType{DType: ir.INT64}, ir.ScalarType{DType: ir.INT64}}
	_, err := ir.NewReturnStmt(vals, returnTypes, ir.Span{})
	if err == nil {
		t.Fatal("expected an arity mismatch error, got nil")
	}
}

func TestNewReturnStmtTypeMismatch(t *testing.T) {
	vals := []ir.Expr{&ir.ConstFloat{Value: 1, TypeV: ir.ScalarType{DType: ir.FP32}}}
	returnTypes := []ir.Type{ir.ScalarType{DType: ir.INT64}}
	_, err := ir.NewReturnStmt(vals, returnTypes, ir.Span{})
	if err == nil {
		t.Fatal("expected a type mismatch error, got nil")
	}
}

func TestNewReturnStmtOK(t *testing.T) {
	vals := []ir.Expr{&ir.ConstInt{Value: 1, TypeV: ir.ScalarType{DType: ir.INT64}}}
	returnTypes := []ir.Type{ir.ScalarType{DType: ir.INT64}}
	stmt, err := ir.NewReturnStmt(vals, returnTypes, ir.Span{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stmt.Values) != 1 {
		t.Errorf("got %d values, want 1", len(stmt.Values))
	}
}

func TestNewFunction(t *testing.T) {
	self := &ir.GlobalVar{NameV: "f", TypeV: &ir.FunctionType{}}
	param := &ir.Var{NameV: "x", TypeV: ir.ScalarType{DType: ir.INT64}}
	ret := &ir.ReturnStmt{Values: []ir.Expr{param}}
	fn := ir.NewFunction(self, []*ir.Var{param}, []ir.Type{ir.ScalarType{DType: ir.INT64}}, ret, ir.Opaque, ir.Span{})
	if fn.Name() != "f" {
		t.Errorf("got name %q, want f", fn.Name())
	}
	if fn.MemRefs != nil {
		t.Errorf("NewFunction should leave MemRefs nil until InitMemRef runs")
	}
	if fn.Kind != ir.Opaque {
		t.Errorf("got kind %v, want Opaque", fn.Kind)
	}
}

func TestShapeOfTypesAndExprs(t *testing.T) {
	types := []ir.Type{ir.ScalarType{DType: ir.INT64}, ir.ScalarType{DType: ir.FP32}}
	got := ir.ShapeOfTypes(types)
	want := "(int64,fp32)"
	if got != want {
		t.Errorf("ShapeOfTypes: got %q, want %q", got, want)
	}

	exprs := []ir.Expr{
		&ir.ConstInt{Value: 1, TypeV: ir.ScalarType{DType: ir.INT64}},
		&ir.ConstFloat{Value: 1, TypeV: ir.ScalarType{DType: ir.FP32}},
	}
	got = ir.ShapeOfExprs(exprs)
	if got != want {
		t.Errorf("ShapeOfExprs: got %q, want %q", got, want)
	}
}

func TestFunctionKindString(t *testing.T) {
	tests := []struct {
		kind ir.FuncKind
		want string
	}{
		{ir.Opaque, "opaque"},
		{ir.Orchestration, "orchestration"},
		{ir.InCore, "incore"},
		{ir.FuncKind(99), "invalid"},
	}
	for _, test := range tests {
		if got := test.kind.String(); got != test.want {
			t.Errorf("FuncKind(%d).String() = %q, want %q", test.kind, got, test.want)
		}
	}
}

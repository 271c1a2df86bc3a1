package subst

import (
	"testing"

	"github.com/pypto-lang/pypto/ir"
)

func scalar(d ir.DType) ir.Type { return ir.ScalarType{DType: d} }

func TestLookupUnbound(t *testing.T) {
	m := New()
	if _, ok := m.Lookup("x"); ok {
		t.Error("expected no binding for an unbound name")
	}
}

func TestBindAndLookup(t *testing.T) {
	m := New()
	repl := &ir.ConstInt{Value: 7, TypeV: scalar(ir.INT64)}
	m.Bind("x", repl)
	got, ok := m.Lookup("x")
	if !ok || got != repl {
		t.Errorf("got (%v, %v), want (%v, true)", got, ok, repl)
	}
}

func TestApplyReplacesBoundVar(t *testing.T) {
	m := New()
	repl := &ir.ConstInt{Value: 7, TypeV: scalar(ir.INT64)}
	m.Bind("x", repl)

	v := &ir.Var{NameV: "x", TypeV: scalar(ir.INT64)}
	out := m.Apply(v)
	if out != repl {
		t.Errorf("got %v, want the bound replacement", out)
	}
}

func TestApplyLeavesUnboundVarsAlone(t *testing.T) {
	m := New()
	v := &ir.Var{NameV: "y", TypeV: scalar(ir.INT64)}
	if out := m.Apply(v); out != v {
		t.Errorf("got %v, want the original Var unchanged", out)
	}
}

func TestApplyPreservesStructuralSharingWhenNothingChanges(t *testing.T) {
	m := New()
	left := &ir.Var{NameV: "a", TypeV: scalar(ir.INT64)}
	right := &ir.Var{NameV: "b", TypeV: scalar(ir.INT64)}
	bin := &ir.BinaryExpr{Op: ir.Add, Left: left, Right: right, ResultType: scalar(ir.INT64)}

	m.Bind("c", &ir.ConstInt{Value: 1, TypeV: scalar(ir.INT64)})
	if out := m.Apply(bin); out != bin {
		t.Error("Apply should return the identical node when nothing in its subtree substitutes")
	}
}

func TestApplyRewritesNestedSubtree(t *testing.T) {
	m := New()
	repl := &ir.ConstInt{Value: 3, TypeV: scalar(ir.INT64)}
	m.Bind("a", repl)

	left := &ir.Var{NameV: "a", TypeV: scalar(ir.INT64)}
	right := &ir.Var{NameV: "b", TypeV: scalar(ir.INT64)}
	bin := &ir.BinaryExpr{Op: ir.Add, Left: left, Right: right, ResultType: scalar(ir.INT64)}

	out := m.Apply(bin).(*ir.BinaryExpr)
	if out.Left != repl {
		t.Errorf("got left %v, want the bound replacement", out.Left)
	}
	if out.Right != right {
		t.Errorf("right operand should be untouched")
	}
}

func TestChanged(t *testing.T) {
	m := New()
	v := &ir.Var{NameV: "x", TypeV: scalar(ir.INT64)}
	if m.Changed(v) {
		t.Error("Changed should be false with no bindings")
	}
	m.Bind("x", &ir.ConstInt{Value: 1, TypeV: scalar(ir.INT64)})
	if !m.Changed(v) {
		t.Error("Changed should be true once x is bound")
	}
}

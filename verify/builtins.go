package verify

import (
	"strings"

	"github.com/pypto-lang/pypto/base/iter"
	"github.com/pypto-lang/pypto/convregistry"
	"github.com/pypto-lang/pypto/ir"
	"github.com/pypto-lang/pypto/opregistry"
	"github.com/pypto-lang/pypto/property"
)

func builtinVerifiers() []PropertyVerifier {
	return []PropertyVerifier{
		&typeCheckedVerifier{},
		&ssaFormVerifier{},
		&noNestedCallsVerifier{},
		&normalizedStmtStructureVerifier{},
		&splitIncoreOrchVerifier{},
		&hasMemRefsVerifier{},
	}
}

// NewFullVerifier returns CreateDefault plus IncoreBlockOpsVerifier, which
// needs the process-wide op and op-conversion registries to decide whether
// a tensor op left inside an InCore function should have been converted.
func NewFullVerifier(ops *opregistry.Registry, convs *convregistry.Registry) *IRVerifier {
	v := NewIRVerifier()
	extra := []PropertyVerifier{&IncoreBlockOpsVerifier{Ops: ops, Convs: convs}}
	for rule := range iter.All(builtinVerifiers(), extra) {
		v.AddRule(rule)
	}
	return v
}

// typeCheckedVerifier checks I3 and I4: every AssignStmt's Var type matches
// its Value's type, and every ReturnStmt's values match the enclosing
// function's declared return types.
type typeCheckedVerifier struct{}

func (*typeCheckedVerifier) Name() string                    { return "TypeCheckedVerifier" }
func (*typeCheckedVerifier) Property() property.IRProperty    { return property.TypeChecked }

func (v *typeCheckedVerifier) Verify(p *ir.Program, out *Diagnostics) {
	for _, fn := range p.Functions() {
		ir.WalkStmt(fn.Body, func(s ir.Stmt) {
			switch st := s.(type) {
			case *ir.AssignStmt:
				if !st.VarV.TypeV.Equal(st.Value.Type()) {
					out.Errorf(v.Name(), "E_TYPE_MISMATCH", st.Span(),
						"assigned var %s has type %s but value has type %s",
						st.VarV.NameV, st.VarV.TypeV, st.Value.Type())
				}
			case *ir.ReturnStmt:
				if len(st.Values) != len(fn.Returns) {
					out.Errorf(v.Name(), "E_RETURN_ARITY", st.Span(),
						"function %s returns %d values, statement returns %d",
						fn.Name(), len(fn.Returns), len(st.Values))
					return
				}
				for i, val := range st.Values {
					if !val.Type().Equal(fn.Returns[i]) {
						out.Errorf(v.Name(), "E_RETURN_TYPE", st.Span(),
							"function %s return %d wants %s, got %s",
							fn.Name(), i, fn.Returns[i], val.Type())
					}
				}
			}
		}, func(ir.Expr) {})
	}
}

// ssaFormVerifier checks I6: every Var is assigned by at most one AssignStmt
// (params count as their function's zeroth assignment).
type ssaFormVerifier struct{}

func (*ssaFormVerifier) Name() string                 { return "SSAFormVerifier" }
func (*ssaFormVerifier) Property() property.IRProperty { return property.SSAForm }

func (v *ssaFormVerifier) Verify(p *ir.Program, out *Diagnostics) {
	for _, fn := range p.Functions() {
		seen := make(map[*ir.Var]bool, len(fn.Params))
		for _, param := range fn.Params {
			seen[param] = true
		}
		ir.WalkStmt(fn.Body, func(s ir.Stmt) {
			as, ok := s.(*ir.AssignStmt)
			if !ok {
				return
			}
			if seen[as.VarV] {
				out.Errorf(v.Name(), "E_NOT_SSA", as.Span(),
					"var %s assigned more than once in function %s", as.VarV.NameV, fn.Name())
				return
			}
			seen[as.VarV] = true
		}, func(ir.Expr) {})
	}
}

// noNestedCallsVerifier checks that no Call expression appears as a
// descendant of another Call's arguments: every call result must already be
// bound to a Var before it is reused.
type noNestedCallsVerifier struct{}

func (*noNestedCallsVerifier) Name() string                 { return "NoNestedCallsVerifier" }
func (*noNestedCallsVerifier) Property() property.IRProperty { return property.NoNestedCalls }

func (v *noNestedCallsVerifier) Verify(p *ir.Program, out *Diagnostics) {
	for _, fn := range p.Functions() {
		ir.WalkStmt(fn.Body, func(ir.Stmt) {}, func(e ir.Expr) {
			call, ok := e.(*ir.Call)
			if !ok {
				return
			}
			for _, arg := range call.Args {
				nested := false
				ir.WalkExpr(arg, func(sub ir.Expr) {
					if _, ok := sub.(*ir.Call); ok {
						nested = true
					}
				})
				if nested {
					out.Errorf(v.Name(), "E_NESTED_CALL", call.Span(),
						"function %s: call to %s has a nested call argument", fn.Name(), call.Target.OpName())
				}
			}
		})
	}
}

// normalizedStmtStructureVerifier checks that a function body never nests a
// SeqStmts directly inside another SeqStmts: NormalizeStmtStructure flattens
// exactly that shape into one block per function.
type normalizedStmtStructureVerifier struct{}

func (*normalizedStmtStructureVerifier) Name() string { return "NormalizedStmtStructureVerifier" }
func (*normalizedStmtStructureVerifier) Property() property.IRProperty {
	return property.NormalizedStmtStructure
}

func (v *normalizedStmtStructureVerifier) Verify(p *ir.Program, out *Diagnostics) {
	for _, fn := range p.Functions() {
		ir.WalkStmt(fn.Body, func(s ir.Stmt) {
			seq, ok := s.(*ir.SeqStmts)
			if !ok {
				return
			}
			for _, inner := range seq.Stmts {
				if _, nested := inner.(*ir.SeqStmts); nested {
					out.Errorf(v.Name(), "E_NESTED_SEQ", seq.Span(),
						"function %s: SeqStmts directly nests another SeqStmts", fn.Name())
				}
			}
		}, func(ir.Expr) {})
	}
}

// splitIncoreOrchVerifier checks that every InCore function's body contains
// no control flow (IfStmt/ForStmt): InCore regions must already be flat by
// the time SplitIncoreOrch has run (spec.md §4.9 precondition).
type splitIncoreOrchVerifier struct{}

func (*splitIncoreOrchVerifier) Name() string                 { return "SplitIncoreOrchVerifier" }
func (*splitIncoreOrchVerifier) Property() property.IRProperty { return property.SplitIncoreOrch }

func (v *splitIncoreOrchVerifier) Verify(p *ir.Program, out *Diagnostics) {
	for _, fn := range p.Functions() {
		if fn.Kind != ir.InCore {
			continue
		}
		ir.WalkStmt(fn.Body, func(s ir.Stmt) {
			switch s.(type) {
			case *ir.IfStmt, *ir.ForStmt:
				out.Errorf(v.Name(), "E_INCORE_CONTROL_FLOW", s.Span(),
					"InCore function %s has unflattened control flow", fn.Name())
			}
		}, func(ir.Expr) {})
	}
}

// IncoreBlockOpsVerifier is the representative verifier named in spec.md
// §4.7: it flags any TensorOp call left inside an InCore function body once
// a conversion for it exists.
type IncoreBlockOpsVerifier struct {
	Ops   *opregistry.Registry
	Convs *convregistry.Registry
}

func (*IncoreBlockOpsVerifier) Name() string                 { return "IncoreBlockOpsVerifier" }
func (*IncoreBlockOpsVerifier) Property() property.IRProperty { return property.IncoreBlockOps }

func (v *IncoreBlockOpsVerifier) Verify(p *ir.Program, out *Diagnostics) {
	for _, fn := range p.Functions() {
		if fn.Kind != ir.InCore {
			continue
		}
		ir.WalkStmt(fn.Body, func(ir.Stmt) {}, func(e ir.Expr) {
			call, ok := e.(*ir.Call)
			if !ok {
				return
			}
			op, ok := call.Target.(*ir.Op)
			if !ok {
				return
			}
			entry, err := v.Ops.GetEntry(op.NameV)
			if err != nil || entry.Category != opregistry.TensorOp {
				return
			}
			if v.Convs.HasConversion(op.NameV) {
				out.Errorf(v.Name(), "E_TENSOR_OP_IN_INCORE", call.Span(),
					"tensor op %q found in InCore function %s (should have been converted)",
					op.NameV, fn.Name())
				return
			}
			out.Warnf(v.Name(), "W_TENSOR_OP_NO_CONVERSION", call.Span(),
				"tensor op %q found in InCore function %s, but no conversion is registered for it (known conversions: %s)",
				op.NameV, fn.Name(), strings.Join(v.Convs.Names(), ", "))
		})
	}
}

// hasMemRefsVerifier checks that every TileType-typed Var assigned in a
// function has a corresponding entry in that function's MemRefs side table.
type hasMemRefsVerifier struct{}

func (*hasMemRefsVerifier) Name() string                 { return "HasMemRefsVerifier" }
func (*hasMemRefsVerifier) Property() property.IRProperty { return property.HasMemRefs }

func (v *hasMemRefsVerifier) Verify(p *ir.Program, out *Diagnostics) {
	for _, fn := range p.Functions() {
		if fn.MemRefs == nil {
			continue
		}
		ir.WalkStmt(fn.Body, func(s ir.Stmt) {
			as, ok := s.(*ir.AssignStmt)
			if !ok {
				return
			}
			if _, isTile := as.VarV.TypeV.(*ir.TileType); !isTile {
				return
			}
			if _, ok := fn.MemRefs.Load(as.VarV); !ok {
				out.Errorf(v.Name(), "E_MISSING_MEMREF", as.Span(),
					"tile var %s in function %s has no MemRef", as.VarV.NameV, fn.Name())
			}
		}, func(ir.Expr) {})
	}
}

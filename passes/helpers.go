// Package passes is the built-in pass catalogue: the representative
// ConvertTensorToBlockOps lowering (spec.md §4.9) plus the other passes
// named only by their property contracts (spec.md §4.11), expressed as
// concrete per-function rewrites in the teacher's idiom.
package passes

import "github.com/pypto-lang/pypto/ir"

// zeroOffsetsTuple builds a MakeTuple of ndim INT64 zero constants, the
// all-zero load/store offset ConvertTensorToBlockOps synthesizes whenever it
// moves a whole tensor into or out of a tile (spec.md §4.9 step 1,3).
func zeroOffsetsTuple(ndim int, span ir.Span) *ir.MakeTuple {
	zeros := make([]ir.Expr, ndim)
	for i := range zeros {
		zeros[i] = &ir.ConstInt{Value: 0, TypeV: ir.ScalarType{DType: ir.INT64}, SpanV: span}
	}
	return shapeTuple(zeros, span)
}

// shapeTuple packs a shape (or offset) expression list into a MakeTuple,
// inferring its TupleType from the elements' own types.
func shapeTuple(es []ir.Expr, span ir.Span) *ir.MakeTuple {
	ts := make([]ir.Type, len(es))
	for i, e := range es {
		ts[i] = e.Type()
	}
	return &ir.MakeTuple{Elements: es, TypeV: &ir.TupleType{Elements: ts}, SpanV: span}
}

// flattenBody reduces a function body to its top-level statement list: a
// SeqStmts' own Stmts, or the single statement itself (spec.md §4.9 step 2:
// "flatten the body into statements").
func flattenBody(body ir.Stmt) []ir.Stmt {
	if seq, ok := body.(*ir.SeqStmts); ok {
		return seq.Stmts
	}
	return []ir.Stmt{body}
}

// substituteTensorToTile rewrites every *ir.Var in e whose name is bound in
// varMap, post-order, mirroring original_source's SubstituteExpr: it
// descends through Call/MakeTuple/TupleGetItemExpr explicitly, and treats
// BinaryExpr/UnaryExpr operands as scalar-only — if substitution would
// actually change one, that means a tensor/tile variable leaked into a
// scalar arithmetic position, which is an internal consistency failure
// rather than something to silently rewrite.
func substituteTensorToTile(e ir.Expr, varMap map[string]*ir.Var) (ir.Expr, error) {
	switch v := e.(type) {
	case *ir.Var:
		if nv, ok := varMap[v.NameV]; ok {
			return nv, nil
		}
		return e, nil
	case *ir.Call:
		newArgs, changed, err := substituteExprList(v.Args, varMap)
		if err != nil {
			return nil, err
		}
		if !changed {
			return e, nil
		}
		return &ir.Call{Target: v.Target, Args: newArgs, Kwargs: v.Kwargs, ResultType: v.ResultType, SpanV: v.SpanV}, nil
	case *ir.MakeTuple:
		newEls, changed, err := substituteExprList(v.Elements, varMap)
		if err != nil {
			return nil, err
		}
		if !changed {
			return e, nil
		}
		return &ir.MakeTuple{Elements: newEls, TypeV: v.TypeV, SpanV: v.SpanV}, nil
	case *ir.TupleGetItemExpr:
		nt, err := substituteTensorToTile(v.Tuple, varMap)
		if err != nil {
			return nil, err
		}
		if nt == v.Tuple {
			return e, nil
		}
		return &ir.TupleGetItemExpr{Tuple: nt, Index: v.Index, TypeV: v.TypeV, SpanV: v.SpanV}, nil
	case *ir.BinaryExpr:
		nl, err := substituteTensorToTile(v.Left, varMap)
		if err != nil {
			return nil, err
		}
		nr, err := substituteTensorToTile(v.Right, varMap)
		if err != nil {
			return nil, err
		}
		if nl != v.Left || nr != v.Right {
			return nil, ir.NewInvariantViolation("scalar-arithmetic-operand",
				"BinaryExpr operand resolved to a tensor/tile variable; scalar expressions must not reference them")
		}
		return e, nil
	case *ir.UnaryExpr:
		nx, err := substituteTensorToTile(v.X, varMap)
		if err != nil {
			return nil, err
		}
		if nx != v.X {
			return nil, ir.NewInvariantViolation("scalar-arithmetic-operand",
				"UnaryExpr operand resolved to a tensor/tile variable; scalar expressions must not reference them")
		}
		return e, nil
	default:
		// ConstInt, ConstFloat, ConstBool, IterArg, GlobalVar, MemRef: leaves.
		return e, nil
	}
}

func substituteExprList(es []ir.Expr, varMap map[string]*ir.Var) ([]ir.Expr, bool, error) {
	out := make([]ir.Expr, len(es))
	changed := false
	for i, e := range es {
		ne, err := substituteTensorToTile(e, varMap)
		if err != nil {
			return nil, false, err
		}
		out[i] = ne
		if ne != e {
			changed = true
		}
	}
	if !changed {
		return es, false, nil
	}
	return out, true, nil
}

package passes

import (
	"fmt"

	"github.com/pypto-lang/pypto/ir"
	"github.com/pypto-lang/pypto/pass"
	"github.com/pypto-lang/pypto/property"
)

// FlattenCallExpr hoists every nested Call out of another expression into
// its own fresh AssignStmt, so no expression tree contains a Call as a
// strict sub-expression of another Call or of a BinaryExpr/UnaryExpr
// (spec.md §4.11, NoNestedCalls).
func FlattenCallExpr() pass.Pass {
	contract := property.Contract{
		Required:    property.NewSet(property.TypeChecked),
		Produced:    property.NewSet(property.NoNestedCalls),
		Invalidated: property.NewSet(property.NormalizedStmtStructure, property.FlattenedSingleStmt),
	}
	return pass.CreateFunctionPass("FlattenCallExpr", contract, func(fn *ir.Function) (*ir.Function, error) {
		hoister := newCallHoister()
		newStmts := make([]ir.Stmt, 0, len(flattenBody(fn.Body)))
		for _, stmt := range flattenBody(fn.Body) {
			hoister.prologue = nil
			newStmt := hoister.flattenStmt(stmt)
			newStmts = append(newStmts, hoister.prologue...)
			newStmts = append(newStmts, newStmt)
		}
		newBody := &ir.SeqStmts{Stmts: newStmts, SpanV: fn.SpanV}
		return ir.NewFunction(fn.Self, fn.Params, fn.Returns, newBody, fn.Kind, fn.SpanV), nil
	})
}

type callHoister struct {
	prologue []ir.Stmt
	counter  *int
}

func newCallHoister() *callHoister {
	return &callHoister{counter: new(int)}
}

func (h *callHoister) fresh(t ir.Type, span ir.Span) *ir.Var {
	*h.counter++
	return &ir.Var{NameV: fmt.Sprintf("_flat%d", *h.counter), TypeV: t, SpanV: span}
}

// hoistNested rewrites the immediate children of e that are themselves
// Calls into references to a fresh Var, appending the corresponding
// AssignStmt to h.prologue. e's own top level is left as-is: only a
// top-level AssignStmt's or EvalStmt's Value is allowed to stay a bare Call
// (ReturnStmt values go through hoistIfCall and are hoisted); everything
// nested one level down is hoisted first.
func (h *callHoister) hoistNested(e ir.Expr) ir.Expr {
	switch v := e.(type) {
	case *ir.Call:
		args := make([]ir.Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = h.hoistIfCall(a)
		}
		if !exprSliceEqual(args, v.Args) {
			return &ir.Call{Target: v.Target, Args: args, Kwargs: v.Kwargs, ResultType: v.ResultType, SpanV: v.SpanV}
		}
		return v
	case *ir.MakeTuple:
		els := make([]ir.Expr, len(v.Elements))
		for i, el := range v.Elements {
			els[i] = h.hoistIfCall(el)
		}
		if !exprSliceEqual(els, v.Elements) {
			return &ir.MakeTuple{Elements: els, TypeV: v.TypeV, SpanV: v.SpanV}
		}
		return v
	case *ir.TupleGetItemExpr:
		t := h.hoistIfCall(v.Tuple)
		if t != v.Tuple {
			return &ir.TupleGetItemExpr{Tuple: t, Index: v.Index, TypeV: v.TypeV, SpanV: v.SpanV}
		}
		return v
	case *ir.BinaryExpr:
		l := h.hoistIfCall(v.Left)
		r := h.hoistIfCall(v.Right)
		if l != v.Left || r != v.Right {
			return &ir.BinaryExpr{Op: v.Op, Left: l, Right: r, ResultType: v.ResultType, SpanV: v.SpanV}
		}
		return v
	case *ir.UnaryExpr:
		x := h.hoistIfCall(v.X)
		if x != v.X {
			return &ir.UnaryExpr{Op: v.Op, X: x, ResultType: v.ResultType, SpanV: v.SpanV}
		}
		return v
	default:
		return e
	}
}

// hoistIfCall hoists e itself, if e is a Call: e is a sub-expression
// position, so a Call reaching here is by definition nested.
func (h *callHoister) hoistIfCall(e ir.Expr) ir.Expr {
	rebuilt := h.hoistNested(e)
	if _, ok := rebuilt.(*ir.Call); !ok {
		return rebuilt
	}
	fresh := h.fresh(rebuilt.Type(), rebuilt.Span())
	h.prologue = append(h.prologue, &ir.AssignStmt{VarV: fresh, Value: rebuilt, SpanV: rebuilt.Span()})
	return fresh
}

func exprSliceEqual(a, b []ir.Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (h *callHoister) flattenStmt(s ir.Stmt) ir.Stmt {
	switch v := s.(type) {
	case *ir.AssignStmt:
		return &ir.AssignStmt{VarV: v.VarV, Value: h.hoistNested(v.Value), SpanV: v.SpanV}
	case *ir.EvalStmt:
		return &ir.EvalStmt{Value: h.hoistNested(v.Value), SpanV: v.SpanV}
	case *ir.ReturnStmt:
		vals := make([]ir.Expr, len(v.Values))
		for i, e := range v.Values {
			vals[i] = h.hoistIfCall(e)
		}
		return &ir.ReturnStmt{Values: vals, SpanV: v.SpanV}
	case *ir.IfStmt:
		cond := h.hoistIfCall(v.Cond)
		then := h.flattenNestedBody(v.Then)
		var els ir.Stmt
		if v.Else != nil {
			els = h.flattenNestedBody(v.Else)
		}
		return &ir.IfStmt{Cond: cond, Then: then, Else: els, SpanV: v.SpanV}
	case *ir.ForStmt:
		begin := h.hoistIfCall(v.Begin)
		end := h.hoistIfCall(v.End)
		step := h.hoistIfCall(v.Step)
		body := h.flattenNestedBody(v.Body)
		return &ir.ForStmt{LoopVar: v.LoopVar, Begin: begin, End: end, Step: step, Body: body, SpanV: v.SpanV}
	default:
		return s
	}
}

// flattenNestedBody flattens a nested block (an If/For arm) with its own
// isolated prologue accumulator, since a Call hoisted out of a branch must
// stay inside that branch rather than leaking to the enclosing scope.
func (h *callHoister) flattenNestedBody(s ir.Stmt) ir.Stmt {
	inner := &callHoister{counter: h.counter}
	stmts := make([]ir.Stmt, 0, len(flattenBody(s)))
	for _, stmt := range flattenBody(s) {
		inner.prologue = nil
		newStmt := inner.flattenStmt(stmt)
		stmts = append(stmts, inner.prologue...)
		stmts = append(stmts, newStmt)
	}
	if len(stmts) == 1 {
		return stmts[0]
	}
	return &ir.SeqStmts{Stmts: stmts, SpanV: s.Span()}
}

// NormalizeStmtStructure flattens nested SeqStmts into a single flat
// SeqStmts per function body (spec.md §4.11).
func NormalizeStmtStructure() pass.Pass {
	contract := property.Contract{
		Required:    property.NewSet(property.TypeChecked),
		Produced:    property.NewSet(property.NormalizedStmtStructure),
		Invalidated: property.NewSet(property.FlattenedSingleStmt),
	}
	return pass.CreateFunctionPass("NormalizeStmtStructure", contract, func(fn *ir.Function) (*ir.Function, error) {
		flat := flattenSeq(fn.Body)
		newBody := &ir.SeqStmts{Stmts: flat, SpanV: fn.SpanV}
		return ir.NewFunction(fn.Self, fn.Params, fn.Returns, newBody, fn.Kind, fn.SpanV), nil
	})
}

func flattenSeq(s ir.Stmt) []ir.Stmt {
	seq, ok := s.(*ir.SeqStmts)
	if !ok {
		return []ir.Stmt{normalizeNestedBlocks(s)}
	}
	out := make([]ir.Stmt, 0, len(seq.Stmts))
	for _, st := range seq.Stmts {
		out = append(out, flattenSeq(st)...)
	}
	return out
}

// normalizeNestedBlocks recurses into If/For bodies so their own blocks are
// flattened too, without lifting their statements to the enclosing level.
func normalizeNestedBlocks(s ir.Stmt) ir.Stmt {
	switch v := s.(type) {
	case *ir.IfStmt:
		then := &ir.SeqStmts{Stmts: flattenSeq(v.Then), SpanV: v.Then.Span()}
		var els ir.Stmt
		if v.Else != nil {
			els = &ir.SeqStmts{Stmts: flattenSeq(v.Else), SpanV: v.Else.Span()}
		}
		return &ir.IfStmt{Cond: v.Cond, Then: then, Else: els, SpanV: v.SpanV}
	case *ir.ForStmt:
		body := &ir.SeqStmts{Stmts: flattenSeq(v.Body), SpanV: v.Body.Span()}
		return &ir.ForStmt{LoopVar: v.LoopVar, Begin: v.Begin, End: v.End, Step: v.Step, Body: body, SpanV: v.SpanV}
	default:
		return s
	}
}

// FlattenSingleStmt is NormalizeStmtStructure's complement: a function body
// that reduces to exactly one statement is left as that bare statement
// rather than wrapped in a one-element SeqStmts (spec.md §4.11).
func FlattenSingleStmt() pass.Pass {
	contract := property.Contract{
		Required:    property.NewSet(property.TypeChecked),
		Produced:    property.NewSet(property.FlattenedSingleStmt),
		Invalidated: property.NewSet(property.NormalizedStmtStructure),
	}
	return pass.CreateFunctionPass("FlattenSingleStmt", contract, func(fn *ir.Function) (*ir.Function, error) {
		newBody := unwrapSingleton(fn.Body)
		return ir.NewFunction(fn.Self, fn.Params, fn.Returns, newBody, fn.Kind, fn.SpanV), nil
	})
}

func unwrapSingleton(s ir.Stmt) ir.Stmt {
	switch v := s.(type) {
	case *ir.SeqStmts:
		if len(v.Stmts) == 1 {
			return unwrapSingleton(v.Stmts[0])
		}
		out := make([]ir.Stmt, len(v.Stmts))
		for i, st := range v.Stmts {
			out[i] = st
		}
		return &ir.SeqStmts{Stmts: out, SpanV: v.SpanV}
	case *ir.IfStmt:
		then := unwrapSingleton(v.Then)
		var els ir.Stmt
		if v.Else != nil {
			els = unwrapSingleton(v.Else)
		}
		return &ir.IfStmt{Cond: v.Cond, Then: then, Else: els, SpanV: v.SpanV}
	case *ir.ForStmt:
		return &ir.ForStmt{LoopVar: v.LoopVar, Begin: v.Begin, End: v.End, Step: v.Step, Body: unwrapSingleton(v.Body), SpanV: v.SpanV}
	default:
		return s
	}
}

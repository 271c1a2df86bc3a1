package passes

import (
	"github.com/pypto-lang/pypto/base/uname"
	"github.com/pypto-lang/pypto/ir"
	"github.com/pypto-lang/pypto/pass"
	"github.com/pypto-lang/pypto/property"
)

// ConvertToSSA renumbers every redefinition of a source name into a fresh
// Var, so that each Var, once assigned, is never assigned again (spec.md
// §4.11): the second `x = ...` in a function becomes `x1 = ...`, and every
// later reference to the source name `x` after that point resolves to
// whichever fresh Var most recently bound it.
func ConvertToSSA() pass.Pass {
	contract := property.Contract{
		Required:    property.NewSet(property.TypeChecked),
		Produced:    property.NewSet(property.SSAForm),
		Invalidated: property.NewSet(property.NormalizedStmtStructure, property.FlattenedSingleStmt),
	}
	return pass.CreateFunctionPass("ConvertToSSA", contract, func(fn *ir.Function) (*ir.Function, error) {
		names := uname.New()
		rename := make(map[string]*ir.Var, len(fn.Params))

		newParams := make([]*ir.Var, len(fn.Params))
		for i, p := range fn.Params {
			names.Name(p.NameV)
			newParams[i] = p
			rename[p.NameV] = p
		}

		newBody := renameStmt(fn.Body, names, rename)
		return ir.NewFunction(fn.Self, newParams, fn.Returns, newBody, fn.Kind, fn.SpanV), nil
	})
}

func renameStmt(s ir.Stmt, names *uname.Unique, rename map[string]*ir.Var) ir.Stmt {
	switch v := s.(type) {
	case *ir.AssignStmt:
		newValue := renameExpr(v.Value, rename)
		freshName := names.Name(v.VarV.NameV)
		freshVar := &ir.Var{NameV: freshName, TypeV: v.VarV.TypeV, SpanV: v.VarV.SpanV}
		rename[v.VarV.NameV] = freshVar
		return &ir.AssignStmt{VarV: freshVar, Value: newValue, SpanV: v.SpanV}
	case *ir.EvalStmt:
		return &ir.EvalStmt{Value: renameExpr(v.Value, rename), SpanV: v.SpanV}
	case *ir.ReturnStmt:
		vals := make([]ir.Expr, len(v.Values))
		for i, e := range v.Values {
			vals[i] = renameExpr(e, rename)
		}
		return &ir.ReturnStmt{Values: vals, SpanV: v.SpanV}
	case *ir.IfStmt:
		cond := renameExpr(v.Cond, rename)
		then := renameStmt(v.Then, names, cloneRenameMap(rename))
		var els ir.Stmt
		if v.Else != nil {
			els = renameStmt(v.Else, names, cloneRenameMap(rename))
		}
		return &ir.IfStmt{Cond: cond, Then: then, Else: els, SpanV: v.SpanV}
	case *ir.ForStmt:
		begin := renameExpr(v.Begin, rename)
		end := renameExpr(v.End, rename)
		step := renameExpr(v.Step, rename)
		inner := cloneRenameMap(rename)
		body := renameStmt(v.Body, names, inner)
		return &ir.ForStmt{LoopVar: v.LoopVar, Begin: begin, End: end, Step: step, Body: body, SpanV: v.SpanV}
	case *ir.SeqStmts:
		out := make([]ir.Stmt, len(v.Stmts))
		for i, st := range v.Stmts {
			out[i] = renameStmt(st, names, rename)
		}
		return &ir.SeqStmts{Stmts: out, SpanV: v.SpanV}
	default:
		return s
	}
}

func cloneRenameMap(m map[string]*ir.Var) map[string]*ir.Var {
	out := make(map[string]*ir.Var, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func renameExpr(e ir.Expr, rename map[string]*ir.Var) ir.Expr {
	return ir.MutateExpr(e, func(inner ir.Expr) ir.Expr {
		v, ok := inner.(*ir.Var)
		if !ok {
			return inner
		}
		if fresh, ok := rename[v.NameV]; ok {
			return fresh
		}
		return inner
	})
}

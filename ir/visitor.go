// Copyright 2025 The PyPTO Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ir

// WalkExpr performs a generic post-order traversal of e, driven by Fields()
// (spec.md §4.3): every child that is itself an Expr or Stmt is walked
// before visit is called on e. Type and KwArgs payloads are never descended
// into; they are leaves as far as expression/statement traversal is
// concerned.
func WalkExpr(e Expr, visit func(Expr)) {
	if e == nil {
		return
	}
	for _, f := range e.Fields() {
		if f.Tag == IgnoreField {
			continue
		}
		if n, ok := f.IsNode(); ok && n != nil {
			walkChildNode(n, visit, nil)
		}
		if ns, ok := f.IsNodes(); ok {
			for _, n := range ns {
				walkChildNode(n, visit, nil)
			}
		}
	}
	visit(e)
}

// WalkStmt performs a generic post-order traversal of s (spec.md §4.3).
// visitExpr is called, post-order, on every expression reachable from s;
// visitStmt is called, post-order, on every statement reachable from s
// including s itself.
func WalkStmt(s Stmt, visitStmt func(Stmt), visitExpr func(Expr)) {
	if s == nil {
		return
	}
	for _, f := range s.Fields() {
		if f.Tag == IgnoreField {
			continue
		}
		if n, ok := f.IsNode(); ok && n != nil {
			walkChildNode(n, visitExpr, visitStmt)
		}
		if ns, ok := f.IsNodes(); ok {
			for _, n := range ns {
				walkChildNode(n, visitExpr, visitStmt)
			}
		}
	}
	visitStmt(s)
}

func walkChildNode(n Node, visitExpr func(Expr), visitStmt func(Stmt)) {
	switch c := n.(type) {
	case Expr:
		WalkExpr(c, visitExpr)
	case Stmt:
		WalkStmt(c, visitStmt, visitExpr)
	}
}

// MutateExpr rewrites e post-order: every child is rebuilt first, then fn is
// applied to the node with its (possibly new) children spliced in. Concrete
// reconstruction dispatches on the node's own kind (spec.md §9: "concrete
// kind dispatch uses a match on the kind tag"), since Go has no
// reflection-free way to copy an arbitrary struct with one field replaced.
// If fn returns its argument unchanged and every child was unchanged too,
// the original e is returned, preserving structural sharing (spec.md I7).
func MutateExpr(e Expr, fn func(Expr) Expr) Expr {
	if e == nil {
		return nil
	}
	rebuilt := rebuildExprChildren(e, fn)
	return fn(rebuilt)
}

// MutateStmt rewrites s post-order, in the same manner as MutateExpr, using
// exprFn for every expression reached and stmtFn for every statement
// (including s itself).
func MutateStmt(s Stmt, stmtFn func(Stmt) Stmt, exprFn func(Expr) Expr) Stmt {
	if s == nil {
		return nil
	}
	rebuilt := rebuildStmtChildren(s, stmtFn, exprFn)
	return stmtFn(rebuilt)
}

func rebuildExprChildren(e Expr, fn func(Expr) Expr) Expr {
	switch v := e.(type) {
	case *MakeTuple:
		els, changed := mutateExprs(v.Elements, fn)
		if !changed {
			return v
		}
		return &MakeTuple{Elements: els, TypeV: v.TypeV, SpanV: v.SpanV}
	case *TupleGetItemExpr:
		t := MutateExpr(v.Tuple, fn)
		if t == v.Tuple {
			return v
		}
		return &TupleGetItemExpr{Tuple: t, Index: v.Index, TypeV: v.TypeV, SpanV: v.SpanV}
	case *Call:
		args, changed := mutateExprs(v.Args, fn)
		if !changed {
			return v
		}
		return &Call{Target: v.Target, Args: args, Kwargs: v.Kwargs, ResultType: v.ResultType, SpanV: v.SpanV}
	case *BinaryExpr:
		l := MutateExpr(v.Left, fn)
		r := MutateExpr(v.Right, fn)
		if l == v.Left && r == v.Right {
			return v
		}
		return &BinaryExpr{Op: v.Op, Left: l, Right: r, ResultType: v.ResultType, SpanV: v.SpanV}
	case *UnaryExpr:
		x := MutateExpr(v.X, fn)
		if x == v.X {
			return v
		}
		return &UnaryExpr{Op: v.Op, X: x, ResultType: v.ResultType, SpanV: v.SpanV}
	default:
		// Var, ConstInt, ConstFloat, ConstBool, IterArg, GlobalVar, MemRef: leaves.
		return e
	}
}

func mutateExprs(es []Expr, fn func(Expr) Expr) ([]Expr, bool) {
	changed := false
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = MutateExpr(e, fn)
		if out[i] != e {
			changed = true
		}
	}
	if !changed {
		return es, false
	}
	return out, true
}

func rebuildStmtChildren(s Stmt, stmtFn func(Stmt) Stmt, exprFn func(Expr) Expr) Stmt {
	rewriteExpr := func(e Expr) Expr { return MutateExpr(e, exprFn) }
	rewriteStmt := func(c Stmt) Stmt { return MutateStmt(c, stmtFn, exprFn) }
	switch v := s.(type) {
	case *AssignStmt:
		val := rewriteExpr(v.Value)
		if val == v.Value {
			return v
		}
		return &AssignStmt{VarV: v.VarV, Value: val, SpanV: v.SpanV}
	case *EvalStmt:
		val := rewriteExpr(v.Value)
		if val == v.Value {
			return v
		}
		return &EvalStmt{Value: val, SpanV: v.SpanV}
	case *ReturnStmt:
		vals, changed := mutateExprs(v.Values, exprFn)
		if !changed {
			return v
		}
		return &ReturnStmt{Values: vals, SpanV: v.SpanV}
	case *IfStmt:
		cond := rewriteExpr(v.Cond)
		then := rewriteStmt(v.Then)
		var els Stmt
		if v.Else != nil {
			els = rewriteStmt(v.Else)
		}
		if cond == v.Cond && then == v.Then && els == v.Else {
			return v
		}
		return &IfStmt{Cond: cond, Then: then, Else: els, SpanV: v.SpanV}
	case *ForStmt:
		begin := rewriteExpr(v.Begin)
		end := rewriteExpr(v.End)
		step := rewriteExpr(v.Step)
		body := rewriteStmt(v.Body)
		if begin == v.Begin && end == v.End && step == v.Step && body == v.Body {
			return v
		}
		return &ForStmt{LoopVar: v.LoopVar, Begin: begin, End: end, Step: step, Body: body, SpanV: v.SpanV}
	case *SeqStmts:
		changed := false
		out := make([]Stmt, len(v.Stmts))
		for i, st := range v.Stmts {
			out[i] = rewriteStmt(st)
			if out[i] != st {
				changed = true
			}
		}
		if !changed {
			return v
		}
		return &SeqStmts{Stmts: out, SpanV: v.SpanV}
	default:
		return s
	}
}

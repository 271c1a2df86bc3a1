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

import "fmt"

// Stmt is the common interface of every IR statement (spec.md §3.3).
type Stmt interface {
	SourceNode
	String() string
}

func stmtsToNodes(ss []Stmt) []Node {
	ns := make([]Node, len(ss))
	for i, s := range ss {
		ns[i] = s
	}
	return ns
}

// AssignStmt binds the result of an expression to a (possibly freshly
// introduced) Var. Var is a DefField: the bound Var is always subject to
// auto-mapping under α-equivalence, regardless of the caller's flag
// (spec.md §4.5).
type AssignStmt struct {
	VarV  *Var
	Value Expr
	SpanV Span
}

var _ Stmt = &AssignStmt{}

func (*AssignStmt) node()            {}
func (*AssignStmt) TypeName() string { return "AssignStmt" }
func (a *AssignStmt) Span() Span     { return a.SpanV }
func (a *AssignStmt) String() string { return fmt.Sprintf("%s = %s", a.VarV, a.Value) }

func (a *AssignStmt) Fields() []FieldDescriptor {
	return []FieldDescriptor{
		FieldNode("Var", DefField, a.VarV),
		FieldNode("Value", UsualField, a.Value),
		{Name: "Span", Tag: IgnoreField},
	}
}

// EvalStmt evaluates an expression purely for its side effect, discarding
// any result (e.g. a store into a tile already bound to a Var).
type EvalStmt struct {
	Value Expr
	SpanV Span
}

var _ Stmt = &EvalStmt{}

func (*EvalStmt) node()            {}
func (*EvalStmt) TypeName() string { return "EvalStmt" }
func (e *EvalStmt) Span() Span     { return e.SpanV }
func (e *EvalStmt) String() string { return e.Value.String() }

func (e *EvalStmt) Fields() []FieldDescriptor {
	return []FieldDescriptor{
		FieldNode("Value", UsualField, e.Value),
		{Name: "Span", Tag: IgnoreField},
	}
}

// ReturnStmt yields zero or more values from the enclosing Function.
type ReturnStmt struct {
	Values []Expr
	SpanV  Span
}

var _ Stmt = &ReturnStmt{}

func (*ReturnStmt) node()            {}
func (*ReturnStmt) TypeName() string { return "ReturnStmt" }
func (r *ReturnStmt) Span() Span     { return r.SpanV }
func (r *ReturnStmt) String() string { return "return " + exprsString(r.Values) }

func (r *ReturnStmt) Fields() []FieldDescriptor {
	return []FieldDescriptor{
		FieldNodes("Values", UsualField, exprsToNodes(r.Values)),
		{Name: "Span", Tag: IgnoreField},
	}
}

// IfStmt branches on a boolean condition.
type IfStmt struct {
	Cond  Expr
	Then  Stmt
	Else  Stmt // nil if there is no else branch
	SpanV Span
}

var _ Stmt = &IfStmt{}

func (*IfStmt) node()            {}
func (*IfStmt) TypeName() string { return "IfStmt" }
func (s *IfStmt) Span() Span     { return s.SpanV }

func (s *IfStmt) String() string {
	if s.Else == nil {
		return fmt.Sprintf("if %s { %s }", s.Cond, s.Then)
	}
	return fmt.Sprintf("if %s { %s } else { %s }", s.Cond, s.Then, s.Else)
}

func (s *IfStmt) Fields() []FieldDescriptor {
	fields := []FieldDescriptor{
		FieldNode("Cond", UsualField, s.Cond),
		FieldNode("Then", UsualField, s.Then),
	}
	if s.Else != nil {
		fields = append(fields, FieldNode("Else", UsualField, s.Else))
	}
	return append(fields, FieldDescriptor{Name: "Span", Tag: IgnoreField})
}

// ForStmt iterates LoopVar over [Begin, End) in steps of Step, running Body
// once per iteration. LoopVar is a DefField (spec.md §4.5).
type ForStmt struct {
	LoopVar *IterArg
	Begin   Expr
	End     Expr
	Step    Expr
	Body    Stmt
	SpanV   Span
}

var _ Stmt = &ForStmt{}

func (*ForStmt) node()            {}
func (*ForStmt) TypeName() string { return "ForStmt" }
func (f *ForStmt) Span() Span     { return f.SpanV }

func (f *ForStmt) String() string {
	return fmt.Sprintf("for %s in [%s,%s,%s) { %s }", f.LoopVar, f.Begin, f.End, f.Step, f.Body)
}

func (f *ForStmt) Fields() []FieldDescriptor {
	return []FieldDescriptor{
		FieldNode("LoopVar", DefField, f.LoopVar),
		FieldNode("Begin", UsualField, f.Begin),
		FieldNode("End", UsualField, f.End),
		FieldNode("Step", UsualField, f.Step),
		FieldNode("Body", UsualField, f.Body),
		{Name: "Span", Tag: IgnoreField},
	}
}

// SeqStmts sequences a list of statements, the block-level statement
// (spec.md §3.3, "NormalizedStmtStructure" flattens nested blocks into one
// of these per function body).
type SeqStmts struct {
	Stmts []Stmt
	SpanV Span
}

var _ Stmt = &SeqStmts{}

func (*SeqStmts) node()            {}
func (*SeqStmts) TypeName() string { return "SeqStmts" }
func (s *SeqStmts) Span() Span     { return s.SpanV }

func (s *SeqStmts) String() string {
	out := ""
	for i, st := range s.Stmts {
		if i > 0 {
			out += "; "
		}
		out += st.String()
	}
	return out
}

func (s *SeqStmts) Fields() []FieldDescriptor {
	return []FieldDescriptor{
		FieldNodes("Stmts", UsualField, stmtsToNodes(s.Stmts)),
		{Name: "Span", Tag: IgnoreField},
	}
}

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

import (
	"fmt"
	"slices"

	"github.com/pypto-lang/pypto/base/stringseq"
)

// Expr is the common interface of every IR expression (spec.md §3.2). Every
// expression carries its own result Type: type information is inferred once,
// at construction time, and never recomputed by walking the tree.
type Expr interface {
	SourceNode
	Type() Type
	String() string
}

func exprsToNodes(es []Expr) []Node {
	ns := make([]Node, len(es))
	for i, e := range es {
		ns[i] = e
	}
	return ns
}

func exprsString(es []Expr) string {
	return stringseq.JoinStringer(slices.Values(es), ",")
}

// exprShapeEqual is the narrow, non-α-mapped comparison shape dimensions use
// (see shapeEqual in type.go). It only needs to understand the expression
// shapes that are legal inside a shape position: constants, IterArgs, and
// arithmetic over them. A Var reaching here is compared by pointer
// identity; neither this function nor structeq rejects a Var in a shape
// position.
func exprShapeEqual(a, b Expr) bool {
	if a.TypeName() != b.TypeName() {
		return false
	}
	switch av := a.(type) {
	case *ConstInt:
		return av.Value == b.(*ConstInt).Value
	case *IterArg:
		return av == b.(*IterArg)
	case *Var:
		return av == b.(*Var)
	case *BinaryExpr:
		bv := b.(*BinaryExpr)
		return av.Op == bv.Op && exprShapeEqual(av.Left, bv.Left) && exprShapeEqual(av.Right, bv.Right)
	case *UnaryExpr:
		bv := b.(*UnaryExpr)
		return av.Op == bv.Op && exprShapeEqual(av.X, bv.X)
	}
	return false
}

// Var is a named, typed binding site. Identity is by pointer, not by name:
// two distinct *Var with the same name are different variables (spec.md I5).
type Var struct {
	NameV string
	TypeV Type
	SpanV Span
}

var _ Expr = &Var{}

func (*Var) node()              {}
func (*Var) TypeName() string   { return "Var" }
func (v *Var) Span() Span       { return v.SpanV }
func (v *Var) Type() Type       { return v.TypeV }
func (v *Var) String() string   { return v.NameV }
func (v *Var) Fields() []FieldDescriptor {
	return []FieldDescriptor{{Name: "Span", Tag: IgnoreField}}
}

// ConstInt is an integer literal.
type ConstInt struct {
	Value int64
	TypeV Type
	SpanV Span
}

var _ Expr = &ConstInt{}

func (*ConstInt) node()            {}
func (*ConstInt) TypeName() string { return "ConstInt" }
func (c *ConstInt) Span() Span     { return c.SpanV }
func (c *ConstInt) Type() Type     { return c.TypeV }
func (c *ConstInt) String() string { return fmt.Sprint(c.Value) }
func (c *ConstInt) Fields() []FieldDescriptor {
	return []FieldDescriptor{
		FieldScalar("Value", UsualField, c.Value),
		{Name: "Span", Tag: IgnoreField},
	}
}

// ConstFloat is a floating-point literal.
type ConstFloat struct {
	Value float64
	TypeV Type
	SpanV Span
}

var _ Expr = &ConstFloat{}

func (*ConstFloat) node()            {}
func (*ConstFloat) TypeName() string { return "ConstFloat" }
func (c *ConstFloat) Span() Span     { return c.SpanV }
func (c *ConstFloat) Type() Type     { return c.TypeV }
func (c *ConstFloat) String() string { return fmt.Sprint(c.Value) }
func (c *ConstFloat) Fields() []FieldDescriptor {
	return []FieldDescriptor{
		FieldScalar("Value", UsualField, c.Value),
		{Name: "Span", Tag: IgnoreField},
	}
}

// ConstBool is a boolean literal.
type ConstBool struct {
	Value bool
	TypeV Type
	SpanV Span
}

var _ Expr = &ConstBool{}

func (*ConstBool) node()            {}
func (*ConstBool) TypeName() string { return "ConstBool" }
func (c *ConstBool) Span() Span     { return c.SpanV }
func (c *ConstBool) Type() Type     { return c.TypeV }
func (c *ConstBool) String() string { return fmt.Sprint(c.Value) }
func (c *ConstBool) Fields() []FieldDescriptor {
	return []FieldDescriptor{
		FieldScalar("Value", UsualField, c.Value),
		{Name: "Span", Tag: IgnoreField},
	}
}

// MakeTuple packs several expressions into a single tuple-typed value.
type MakeTuple struct {
	Elements []Expr
	TypeV    Type
	SpanV    Span
}

var _ Expr = &MakeTuple{}

func (*MakeTuple) node()            {}
func (*MakeTuple) TypeName() string { return "MakeTuple" }
func (m *MakeTuple) Span() Span     { return m.SpanV }
func (m *MakeTuple) Type() Type     { return m.TypeV }
func (m *MakeTuple) String() string { return "(" + exprsString(m.Elements) + ")" }
func (m *MakeTuple) Fields() []FieldDescriptor {
	return []FieldDescriptor{
		FieldNodes("Elements", UsualField, exprsToNodes(m.Elements)),
		{Name: "Span", Tag: IgnoreField},
	}
}

// TupleGetItemExpr projects one element out of a tuple-typed expression.
type TupleGetItemExpr struct {
	Tuple Expr
	Index int
	TypeV Type
	SpanV Span
}

var _ Expr = &TupleGetItemExpr{}

func (*TupleGetItemExpr) node()            {}
func (*TupleGetItemExpr) TypeName() string { return "TupleGetItemExpr" }
func (t *TupleGetItemExpr) Span() Span     { return t.SpanV }
func (t *TupleGetItemExpr) Type() Type     { return t.TypeV }
func (t *TupleGetItemExpr) String() string { return fmt.Sprintf("%s[%d]", t.Tuple, t.Index) }
func (t *TupleGetItemExpr) Fields() []FieldDescriptor {
	return []FieldDescriptor{
		FieldNode("Tuple", UsualField, t.Tuple),
		FieldScalar("Index", UsualField, t.Index),
		{Name: "Span", Tag: IgnoreField},
	}
}

// CallTarget is either a primitive Op (resolved through the op registry) or a
// GlobalVar (a call to another function in the same Program).
type CallTarget interface {
	Node
	OpName() string
}

// Op is a reference, by name, to a primitive registered in the op registry
// (spec.md §4.1). Op carries no payload of its own: the registry owns the
// primitive's signature rule and default kwargs.
type Op struct {
	NameV string
}

var _ CallTarget = &Op{}

func (*Op) node()                 {}
func (*Op) TypeName() string      { return "Op" }
func (o *Op) OpName() string { return o.NameV }
func (o *Op) Fields() []FieldDescriptor {
	return []FieldDescriptor{FieldScalar("Name", UsualField, o.NameV)}
}

// GlobalVar is a reference, by pointer, to another Function within the same
// Program: calling a GlobalVar is a call to user-defined (or builtin but
// non-primitive) code rather than a registered primitive.
type GlobalVar struct {
	NameV string
	TypeV *FunctionType
	SpanV Span
}

var _ CallTarget = &GlobalVar{}
var _ Expr = &GlobalVar{}

func (*GlobalVar) node()            {}
func (*GlobalVar) TypeName() string { return "GlobalVar" }
func (g *GlobalVar) Span() Span     { return g.SpanV }
func (g *GlobalVar) Type() Type     { return g.TypeV }
func (g *GlobalVar) OpName() string { return g.NameV }
func (g *GlobalVar) String() string { return g.NameV }
func (g *GlobalVar) Fields() []FieldDescriptor {
	return []FieldDescriptor{{Name: "Span", Tag: IgnoreField}}
}

// Call invokes either a primitive Op or another Function (by GlobalVar),
// with positional args and an ordered set of keyword arguments (spec.md
// §3.2, §4.1).
type Call struct {
	Target     CallTarget
	Args       []Expr
	Kwargs     KwArgs
	ResultType Type
	SpanV      Span
}

var _ Expr = &Call{}

func (*Call) node()            {}
func (*Call) TypeName() string { return "Call" }
func (c *Call) Span() Span     { return c.SpanV }
func (c *Call) Type() Type     { return c.ResultType }

func (c *Call) String() string {
	parts := make([]string, 0, len(c.Args)+len(c.Kwargs))
	for _, a := range c.Args {
		parts = append(parts, a.String())
	}
	for _, kw := range c.Kwargs {
		parts = append(parts, fmt.Sprintf("%s=%s", kw.Name, kw.Value))
	}
	return fmt.Sprintf("%s(%s)", c.Target.OpName(), stringseq.Join(slices.Values(parts), ","))
}

func (c *Call) Fields() []FieldDescriptor {
	return []FieldDescriptor{
		FieldNode("Target", UsualField, c.Target),
		FieldNodes("Args", UsualField, exprsToNodes(c.Args)),
		FieldKwArgs("Kwargs", UsualField, c.Kwargs),
		{Name: "Span", Tag: IgnoreField},
	}
}

// BinOp is the closed set of binary operators (spec.md §3.2).
type BinOp uint8

// Binary operators.
const (
	Add BinOp = iota
	Sub
	Mul
	FloorDiv
	FloorMod
	FloatDiv
	Pow
	Min
	Max
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	And
	Or
	Xor
	BitAnd
	BitOr
	BitXor
	BitShiftLeft
	BitShiftRight
)

var binOpSymbols = map[BinOp]string{
	Add: "+", Sub: "-", Mul: "*", FloorDiv: "//", FloorMod: "%", FloatDiv: "/",
	Pow: "**", Min: "min", Max: "max", Eq: "==", Ne: "!=", Lt: "<", Le: "<=",
	Gt: ">", Ge: ">=", And: "&&", Or: "||", Xor: "^^",
	BitAnd: "&", BitOr: "|", BitXor: "^", BitShiftLeft: "<<", BitShiftRight: ">>",
}

func (op BinOp) String() string {
	if s, ok := binOpSymbols[op]; ok {
		return s
	}
	return "?"
}

// BinaryExpr applies a BinOp to two operands (spec.md §9: modeled as one
// struct tagged by a closed BinOp enum rather than 23 separate Go types).
type BinaryExpr struct {
	Op         BinOp
	Left       Expr
	Right      Expr
	ResultType Type
	SpanV      Span
}

var _ Expr = &BinaryExpr{}

func (*BinaryExpr) node()            {}
func (*BinaryExpr) TypeName() string { return "BinaryExpr" }
func (b *BinaryExpr) Span() Span     { return b.SpanV }
func (b *BinaryExpr) Type() Type     { return b.ResultType }
func (b *BinaryExpr) String() string { return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right) }

func (b *BinaryExpr) Fields() []FieldDescriptor {
	return []FieldDescriptor{
		FieldScalar("Op", UsualField, b.Op),
		FieldNode("Left", UsualField, b.Left),
		FieldNode("Right", UsualField, b.Right),
		{Name: "Span", Tag: IgnoreField},
	}
}

// UnOp is the closed set of unary operators (spec.md §3.2).
type UnOp uint8

// Unary operators.
const (
	Abs UnOp = iota
	Neg
	Not
	BitNot
	Cast
)

var unOpSymbols = map[UnOp]string{
	Abs: "abs", Neg: "-", Not: "!", BitNot: "~", Cast: "cast",
}

func (op UnOp) String() string {
	if s, ok := unOpSymbols[op]; ok {
		return s
	}
	return "?"
}

// UnaryExpr applies a UnOp to a single operand. Cast's target dtype is the
// node's own ResultType, not a separate field: there is nowhere else for it
// to live once the source language's dtype argument has been type-checked
// away (spec.md §4.1).
type UnaryExpr struct {
	Op         UnOp
	X          Expr
	ResultType Type
	SpanV      Span
}

var _ Expr = &UnaryExpr{}

func (*UnaryExpr) node()            {}
func (*UnaryExpr) TypeName() string { return "UnaryExpr" }
func (u *UnaryExpr) Span() Span     { return u.SpanV }
func (u *UnaryExpr) Type() Type     { return u.ResultType }

func (u *UnaryExpr) String() string {
	if u.Op == Cast {
		return fmt.Sprintf("cast<%s>(%s)", u.ResultType, u.X)
	}
	return fmt.Sprintf("%s%s", u.Op, u.X)
}

func (u *UnaryExpr) Fields() []FieldDescriptor {
	return []FieldDescriptor{
		FieldScalar("Op", UsualField, u.Op),
		FieldNode("X", UsualField, u.X),
		{Name: "Span", Tag: IgnoreField},
	}
}

// IterArg is a symbolic loop-bound variable: the value a ForStmt binds on
// each iteration, usable wherever a shape dimension or index needs it
// (glossary). Identity is by pointer, like Var.
type IterArg struct {
	NameV string
	TypeV Type
	SpanV Span
}

var _ Expr = &IterArg{}

func (*IterArg) node()            {}
func (*IterArg) TypeName() string { return "IterArg" }
func (a *IterArg) Span() Span     { return a.SpanV }
func (a *IterArg) Type() Type     { return a.TypeV }
func (a *IterArg) String() string { return a.NameV }
func (a *IterArg) Fields() []FieldDescriptor {
	return []FieldDescriptor{{Name: "Span", Tag: IgnoreField}}
}

// MemRef is an abstract memory-allocation handle attached to a TileType-typed
// Var by the InitMemRef pass, and coalesced by BasicMemoryReuse (glossary).
// It is never a child of an expression tree; it lives in the side table
// Function.MemRefs and is a Node purely so it participates in the same
// structural-equality machinery as everything else it is compared alongside.
type MemRef struct {
	SlotID int
	Space  MemorySpace
	TypeV  Type
	SpanV  Span
}

var _ Expr = &MemRef{}

func (*MemRef) node()            {}
func (*MemRef) TypeName() string { return "MemRef" }
func (m *MemRef) Span() Span     { return m.SpanV }
func (m *MemRef) Type() Type     { return m.TypeV }
func (m *MemRef) String() string { return fmt.Sprintf("memref#%d@%s", m.SlotID, m.Space) }
func (m *MemRef) Fields() []FieldDescriptor {
	return []FieldDescriptor{
		FieldScalar("SlotID", UsualField, m.SlotID),
		FieldScalar("Space", UsualField, m.Space),
		{Name: "Span", Tag: IgnoreField},
	}
}

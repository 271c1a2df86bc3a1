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

// TypeKind tags the closed set of concrete Type variants (spec.md §9: model
// the hierarchy as a closed tagged variant rather than an open class tree).
type TypeKind uint8

// Type kinds.
const (
	InvalidTypeKind TypeKind = iota
	ScalarTypeKind
	TensorTypeKind
	TileTypeKind
	TupleTypeKind
	FunctionTypeKind
	VoidTypeKind
)

// Type is the common interface of every IR type (spec.md §3.1). Equality of
// types is structural and never consults α-mapping: names do not appear
// inside types, so there is nothing for a Var-renaming to identify.
type Type interface {
	Node
	Kind() TypeKind
	// Equal reports whether other is the same type, structurally.
	Equal(other Type) bool
	String() string
}

// ScalarType is the type of a single scalar value of a given dtype.
type ScalarType struct {
	DType DType
	SpanV Span
}

var _ Type = ScalarType{}

func (ScalarType) node()                  {}
func (ScalarType) TypeName() string       { return "ScalarType" }
func (t ScalarType) Span() Span           { return t.SpanV }
func (ScalarType) Kind() TypeKind         { return ScalarTypeKind }
func (t ScalarType) String() string       { return t.DType.String() }
func (t ScalarType) Fields() []FieldDescriptor {
	return []FieldDescriptor{
		FieldScalar("DType", UsualField, t.DType),
		{Name: "Span", Tag: IgnoreField},
	}
}

// Equal reports whether other is a ScalarType with the same dtype.
func (t ScalarType) Equal(other Type) bool {
	o, ok := other.(ScalarType)
	return ok && o.DType == t.DType
}

// TensorType is a tensor living in DDR (or, transiently, any memory space)
// with a symbolic shape: an ordered sequence of scalar-typed expressions.
type TensorType struct {
	Shape []Expr
	DType DType
	Space MemorySpace
	SpanV Span
}

var _ Type = &TensorType{}

func (*TensorType) node()            {}
func (*TensorType) TypeName() string { return "TensorType" }
func (t *TensorType) Span() Span     { return t.SpanV }
func (*TensorType) Kind() TypeKind   { return TensorTypeKind }

func (t *TensorType) String() string {
	return fmt.Sprintf("Tensor[%s,%s,%s]", shapeString(t.Shape), t.DType, t.Space)
}

func (t *TensorType) Fields() []FieldDescriptor {
	return []FieldDescriptor{
		FieldScalar("DType", UsualField, t.DType),
		FieldScalar("Space", UsualField, t.Space),
		FieldNodes("Shape", UsualField, exprsToNodes(t.Shape)),
		{Name: "Span", Tag: IgnoreField},
	}
}

// Equal reports whether other is a TensorType of the same shape, dtype and
// memory space.
func (t *TensorType) Equal(other Type) bool {
	o, ok := other.(*TensorType)
	if !ok || t.DType != o.DType || t.Space != o.Space {
		return false
	}
	return shapeEqual(t.Shape, o.Shape)
}

// TileType is a partitioned, memory-space-resident view over a tensor: the
// currency of block ops (glossary).
type TileType struct {
	Shape []Expr
	DType DType
	Space MemorySpace
	View  *ViewInfo
	SpanV Span
}

// ViewInfo describes how a tile views into its backing tensor, when known.
type ViewInfo struct {
	Offsets []Expr
}

var _ Type = &TileType{}

func (*TileType) node()            {}
func (*TileType) TypeName() string { return "TileType" }
func (t *TileType) Span() Span     { return t.SpanV }
func (*TileType) Kind() TypeKind   { return TileTypeKind }

func (t *TileType) String() string {
	return fmt.Sprintf("Tile[%s,%s,%s]", shapeString(t.Shape), t.DType, t.Space)
}

func (t *TileType) Fields() []FieldDescriptor {
	return []FieldDescriptor{
		FieldScalar("DType", UsualField, t.DType),
		FieldScalar("Space", UsualField, t.Space),
		FieldNodes("Shape", UsualField, exprsToNodes(t.Shape)),
		{Name: "Span", Tag: IgnoreField},
	}
}

// Equal reports whether other is a TileType of the same shape, dtype and
// memory space. The (optional) view is not part of the type's identity.
func (t *TileType) Equal(other Type) bool {
	o, ok := other.(*TileType)
	if !ok || t.DType != o.DType || t.Space != o.Space {
		return false
	}
	return shapeEqual(t.Shape, o.Shape)
}

// TupleType is the type of an expression or function result yielding more
// than one value.
type TupleType struct {
	Elements []Type
	SpanV    Span
}

var _ Type = &TupleType{}

func (*TupleType) node()            {}
func (*TupleType) TypeName() string { return "TupleType" }
func (t *TupleType) Span() Span     { return t.SpanV }
func (*TupleType) Kind() TypeKind   { return TupleTypeKind }

func (t *TupleType) String() string {
	return "(" + stringseq.JoinStringer(slices.Values(t.Elements), ",") + ")"
}

func (t *TupleType) Fields() []FieldDescriptor {
	return []FieldDescriptor{
		FieldTypes("Elements", UsualField, t.Elements),
		{Name: "Span", Tag: IgnoreField},
	}
}

// Equal reports whether other is a TupleType with the same elements, in order.
func (t *TupleType) Equal(other Type) bool {
	o, ok := other.(*TupleType)
	if !ok || len(o.Elements) != len(t.Elements) {
		return false
	}
	for i, el := range t.Elements {
		if !el.Equal(o.Elements[i]) {
			return false
		}
	}
	return true
}

// FunctionType is the signature of a Function: its parameter and return types.
type FunctionType struct {
	Params  []Type
	Returns []Type
	SpanV   Span
}

var _ Type = &FunctionType{}

func (*FunctionType) node()            {}
func (*FunctionType) TypeName() string { return "FunctionType" }
func (t *FunctionType) Span() Span     { return t.SpanV }
func (*FunctionType) Kind() TypeKind   { return FunctionTypeKind }

func (t *FunctionType) String() string {
	return fmt.Sprintf("func(%s) -> (%s)",
		stringseq.JoinStringer(slices.Values(t.Params), ","),
		stringseq.JoinStringer(slices.Values(t.Returns), ","))
}

func (t *FunctionType) Fields() []FieldDescriptor {
	return []FieldDescriptor{
		FieldTypes("Params", UsualField, t.Params),
		FieldTypes("Returns", UsualField, t.Returns),
		{Name: "Span", Tag: IgnoreField},
	}
}

// Equal reports whether other is a FunctionType with the same signature.
func (t *FunctionType) Equal(other Type) bool {
	o, ok := other.(*FunctionType)
	if !ok || len(o.Params) != len(t.Params) || len(o.Returns) != len(t.Returns) {
		return false
	}
	for i, p := range t.Params {
		if !p.Equal(o.Params[i]) {
			return false
		}
	}
	for i, r := range t.Returns {
		if !r.Equal(o.Returns[i]) {
			return false
		}
	}
	return true
}

// VoidType is the opaque sentinel type of a value-less expression (spec.md §3.1).
type VoidType struct{}

var _ Type = VoidType{}

func (VoidType) node()                       {}
func (VoidType) TypeName() string            { return "VoidType" }
func (VoidType) Kind() TypeKind              { return VoidTypeKind }
func (VoidType) String() string              { return "void" }
func (VoidType) Fields() []FieldDescriptor    { return nil }
func (VoidType) Equal(other Type) bool        { _, ok := other.(VoidType); return ok }

func shapeString(shape []Expr) string {
	return "[" + stringseq.JoinStringer(slices.Values(shape), ",") + "]"
}

// shapeEqual performs the structural (non-α-mapped) comparison types need
// for their shape dimensions. Spec.md §3.1 notes that "names do not appear
// inside types": valid programs only reference IterArg/constants in shape
// expressions, never a bound Var, so the absence of α-mapping here is not a
// loss of generality for them. A Var that does appear in a shape is compared
// by pointer identity; nothing rejects it.
func shapeEqual(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !exprShapeEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

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

// NewAssignStmt builds an AssignStmt, enforcing I3: v.Type() must structurally
// equal value.Type(). Passes that deliberately need a temporarily mismatched
// tree (there are none in this core) must construct the struct literal
// directly; every ordinary caller goes through here.
func NewAssignStmt(v *Var, value Expr, span Span) (*AssignStmt, error) {
	if !v.TypeV.Equal(value.Type()) {
		return nil, NewTypeMismatch("AssignStmt", v.TypeV.String(), value.Type().String())
	}
	return &AssignStmt{VarV: v, Value: value, SpanV: span}, nil
}

// NewReturnStmt builds a ReturnStmt, enforcing I4: each value's type must
// structurally equal the corresponding entry of returnTypes, positionally.
func NewReturnStmt(values []Expr, returnTypes []Type, span Span) (*ReturnStmt, error) {
	if len(values) != len(returnTypes) {
		return nil, NewTypeMismatch("ReturnStmt", ShapeOfTypes(returnTypes), ShapeOfExprs(values))
	}
	for i, v := range values {
		if !v.Type().Equal(returnTypes[i]) {
			return nil, NewTypeMismatch("ReturnStmt", returnTypes[i].String(), v.Type().String())
		}
	}
	return &ReturnStmt{Values: values, SpanV: span}, nil
}

// NewFunction builds a Function from its parts, with MemRefs left nil. It
// performs no type check: the values of a ReturnStmt in Body are not compared
// against returns here. I4 is enforced where a ReturnStmt is built through
// NewReturnStmt, and re-checked by the TypeChecked property verifier.
func NewFunction(self *GlobalVar, params []*Var, returns []Type, body Stmt, kind FuncKind, span Span) *Function {
	return &Function{
		Self:    self,
		Params:  params,
		Returns: returns,
		Body:    body,
		Kind:    kind,
		MemRefs: nil,
		SpanV:   span,
	}
}

// ShapeOfTypes renders a type list the way a TypeMismatchError wants it.
func ShapeOfTypes(ts []Type) string {
	return (&TupleType{Elements: ts}).String()
}

// ShapeOfExprs renders an expression list's types the way a TypeMismatchError
// wants it.
func ShapeOfExprs(es []Expr) string {
	ts := make([]Type, len(es))
	for i, e := range es {
		ts[i] = e.Type()
	}
	return ShapeOfTypes(ts)
}

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

// Package ir is the PyPTO intermediate representation: a typed,
// tree-shaped, reference-shared DAG of expressions, statements, functions
// and programs (spec.md §3). Nodes are immutable once built; transforming
// the IR always allocates new nodes, structurally sharing unchanged
// subtrees (spec.md I7).
package ir

// Node is implemented by every IR node: types, expressions, statements,
// functions and programs.
type Node interface {
	// node prevents external packages from implementing Node directly: the
	// node set is closed (spec.md §9 "model as a closed tagged variant").
	node()

	// TypeName returns the concrete Go type name of the node, used as the
	// fast first check in structural equality (spec.md §4.5 step 1).
	TypeName() string

	// Fields returns the field descriptors driving generic traversal,
	// structural hashing and equality (spec.md §4.5). Nodes that carry a
	// source position include a Span field tagged IgnoreField; Op, Program
	// and VoidType have none.
	Fields() []FieldDescriptor
}

// SourceNode is a node carrying a source position.
type SourceNode interface {
	Node
	Span() Span
}

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

// FieldTag classifies how a field of an IR node participates in structural
// comparison and hashing (spec.md §4.5).
type FieldTag uint8

const (
	// IgnoreField is excluded from both hashing and equality. Span is always
	// tagged IgnoreField. Function has no Name field at all (its name lives on
	// its GlobalVar), so a function's name is likewise never compared.
	IgnoreField FieldTag = iota
	// UsualField is compared recursively and mixed into the hash; Var
	// comparison inside a UsualField respects the caller's auto-mapping flag.
	UsualField
	// DefField is a definition site (AssignStmt.Var, Function.Params,
	// ForStmt.LoopVar). Inside a DefField,
	// auto-mapping is unconditionally enabled, independent of the caller's flag.
	DefField
)

// payload distinguishes what a FieldDescriptor actually carries, since Go has
// no reflection-free "any node-shaped value" union.
type payload uint8

const (
	payloadNode payload = iota
	payloadNodes
	payloadKwArgs
	payloadTypes
	payloadScalar
)

// FieldDescriptor describes one field of a concrete IR node, as returned by
// Node.Fields. Exactly one of Node, Nodes, KwArgs, Types, Scalar is meaningful,
// selected by the internal payload kind.
type FieldDescriptor struct {
	Name    string
	Tag     FieldTag
	kind    payload
	node    Node
	nodes   []Node
	kwargs  KwArgs
	typesV  []Type
	scalar  any
}

// FieldNode returns a descriptor for a single child node.
func FieldNode(name string, tag FieldTag, n Node) FieldDescriptor {
	return FieldDescriptor{Name: name, Tag: tag, kind: payloadNode, node: n}
}

// FieldNodes returns a descriptor for an ordered sequence of child nodes.
func FieldNodes(name string, tag FieldTag, ns []Node) FieldDescriptor {
	return FieldDescriptor{Name: name, Tag: tag, kind: payloadNodes, nodes: ns}
}

// FieldKwArgs returns a descriptor for a Call's keyword arguments.
func FieldKwArgs(name string, tag FieldTag, kw KwArgs) FieldDescriptor {
	return FieldDescriptor{Name: name, Tag: tag, kind: payloadKwArgs, kwargs: kw}
}

// FieldTypes returns a descriptor for an ordered sequence of Types (e.g. a
// function's return types, or a tuple type's elements).
func FieldTypes(name string, tag FieldTag, ts []Type) FieldDescriptor {
	return FieldDescriptor{Name: name, Tag: tag, kind: payloadTypes, typesV: ts}
}

// FieldScalar returns a descriptor for a leaf value that carries no child
// nodes of its own (an enum, a name, an index) but still participates in
// equality and hashing. v must be comparable with ==.
func FieldScalar(name string, tag FieldTag, v any) FieldDescriptor {
	return FieldDescriptor{Name: name, Tag: tag, kind: payloadScalar, scalar: v}
}

// IsNode reports whether the descriptor carries a single child node, and
// returns it.
func (f FieldDescriptor) IsNode() (Node, bool) {
	if f.kind != payloadNode {
		return nil, false
	}
	return f.node, true
}

// IsNodes reports whether the descriptor carries a sequence of child nodes,
// and returns it.
func (f FieldDescriptor) IsNodes() ([]Node, bool) {
	if f.kind != payloadNodes {
		return nil, false
	}
	return f.nodes, true
}

// IsKwArgs reports whether the descriptor carries keyword arguments, and
// returns them.
func (f FieldDescriptor) IsKwArgs() (KwArgs, bool) {
	if f.kind != payloadKwArgs {
		return nil, false
	}
	return f.kwargs, true
}

// IsTypes reports whether the descriptor carries a sequence of Types, and
// returns it.
func (f FieldDescriptor) IsTypes() ([]Type, bool) {
	if f.kind != payloadTypes {
		return nil, false
	}
	return f.typesV, true
}

// IsScalar reports whether the descriptor carries a comparable leaf value,
// and returns it.
func (f FieldDescriptor) IsScalar() (any, bool) {
	if f.kind != payloadScalar {
		return nil, false
	}
	return f.scalar, true
}

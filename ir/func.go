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

	"github.com/pypto-lang/pypto/base/ordered"
	"github.com/pypto-lang/pypto/base/stringseq"
)

// FuncKind classifies how a Function may be lowered and called (spec.md
// §3.4). Only InCore functions are legal input to ConvertTensorToBlockOps;
// Orchestration functions call InCore functions and are themselves called
// from Opaque (host-visible) entry points.
type FuncKind uint8

// Function kinds.
const (
	Opaque FuncKind = iota
	Orchestration
	InCore
)

func (k FuncKind) String() string {
	switch k {
	case Opaque:
		return "opaque"
	case Orchestration:
		return "orchestration"
	case InCore:
		return "incore"
	}
	return "invalid"
}

// Function is a top-level, named unit of the IR (spec.md §3.4): a fixed
// parameter and return signature, a single statement body, and a side table
// of memory-reference metadata attached to its tile-typed local variables by
// InitMemRef.
type Function struct {
	Self    *GlobalVar
	Params  []*Var
	Returns []Type
	Body    Stmt
	Kind    FuncKind
	MemRefs *ordered.Map[*Var, *MemRef]
	SpanV   Span
}

var _ Node = &Function{}

func (*Function) node()            {}
func (*Function) TypeName() string { return "Function" }
func (f *Function) Span() Span     { return f.SpanV }
func (f *Function) Name() string   { return f.Self.NameV }

func (f *Function) String() string {
	ps := make([]string, len(f.Params))
	for i, p := range f.Params {
		ps[i] = fmt.Sprintf("%s:%s", p.NameV, p.TypeV)
	}
	return fmt.Sprintf("func %s(%s) [%s] { %s }", f.Name(), stringseq.Join(slices.Values(ps), ","), f.Kind, f.Body)
}

// Fields exposes Params and Body for generic traversal. Name is carried on
// the Function's own GlobalVar and is intentionally not repeated here.
// Params are a DefField: a structural comparison of two functions treats
// their parameters as freely α-renameable (spec.md §4.5).
func (f *Function) Fields() []FieldDescriptor {
	params := make([]Node, len(f.Params))
	for i, p := range f.Params {
		params[i] = p
	}
	return []FieldDescriptor{
		FieldScalar("Kind", UsualField, f.Kind),
		FieldNodes("Params", DefField, params),
		FieldNode("Body", UsualField, f.Body),
		{Name: "Span", Tag: IgnoreField},
	}
}

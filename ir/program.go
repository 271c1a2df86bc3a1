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
	"github.com/pypto-lang/pypto/base/ordered"
)

// Program is the root of the IR: an ordered collection of functions, keyed
// by their GlobalVar. It carries no IRProperty set; pipeline.Pipeline tracks
// properties separately. Program owns its functions: nothing outside the tree
// referenced by a Program's functions is considered part of that Program.
type Program struct {
	functions *ordered.Map[*GlobalVar, *Function]
}

// NewProgram returns an empty Program.
func NewProgram() *Program {
	return &Program{functions: ordered.NewMap[*GlobalVar, *Function]()}
}

var _ Node = &Program{}

func (*Program) node()            {}
func (*Program) TypeName() string { return "Program" }

// AddFunction inserts fn under its own GlobalVar, in insertion order.
// Redefining an existing GlobalVar overwrites it in place, preserving its
// original position (spec.md I2: a Program never holds two functions for
// the same GlobalVar).
func (p *Program) AddFunction(fn *Function) {
	p.functions.Store(fn.Self, fn)
}

// Function looks up the Function bound to gv, if any.
func (p *Program) Function(gv *GlobalVar) (*Function, bool) {
	return p.functions.Load(gv)
}

// Functions iterates over the program's functions in insertion order.
func (p *Program) Functions() func(func(*GlobalVar, *Function) bool) {
	return p.functions.Iter()
}

// FunctionByName returns the first function whose GlobalVar has the given
// name, if any. Names need not be unique across a Program in general, but
// every built-in pass and the diagnostics they emit address functions by
// name, so this is the common lookup path outside of GlobalVar-holding code.
func (p *Program) FunctionByName(name string) (*Function, bool) {
	for gv, fn := range p.functions.Iter() {
		if gv.NameV == name {
			return fn, true
		}
	}
	return nil, false
}

// Len returns the number of functions in the program.
func (p *Program) Len() int {
	return p.functions.Size()
}

// Fields exposes the program's functions, in order, for generic traversal.
func (p *Program) Fields() []FieldDescriptor {
	fns := make([]Node, 0, p.functions.Size())
	for fn := range p.functions.Values() {
		fns = append(fns, fn)
	}
	return []FieldDescriptor{
		FieldNodes("Functions", UsualField, fns),
	}
}

// Clone returns a shallow copy of the program: a new ordered map over the
// same *Function pointers. Passes that rewrite a subset of functions clone
// first, then AddFunction only the ones they change, structurally sharing
// the rest (spec.md I7).
func (p *Program) Clone() *Program {
	return &Program{functions: p.functions.Clone()}
}

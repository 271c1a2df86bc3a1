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

import "github.com/pkg/errors"

// TypeMismatchError is raised by a builder when the shape the caller asked
// for is not well-typed: an op's signature rule rejected its arguments, an
// AssignStmt's Var type disagrees with its Value's type, or a ReturnStmt's
// values disagree with the declared return types (spec.md §7).
type TypeMismatchError struct {
	Op      string
	Wanted  string
	Got     string
}

func (e *TypeMismatchError) Error() string {
	return errors.Errorf("%s: type mismatch: wanted %s, got %s", e.Op, e.Wanted, e.Got).Error()
}

// NewTypeMismatch builds a TypeMismatchError.
func NewTypeMismatch(op, wanted, got string) error {
	return &TypeMismatchError{Op: op, Wanted: wanted, Got: got}
}

// InvariantViolationError signals that an internal data-model invariant
// (I1-I7, spec.md §3.6) would be broken by the requested construction. This
// is always a programming error in a pass, never a user-facing condition.
type InvariantViolationError struct {
	Invariant string
	Detail    string
}

func (e *InvariantViolationError) Error() string {
	return errors.Errorf("invariant %s violated: %s", e.Invariant, e.Detail).Error()
}

// NewInvariantViolation builds an InvariantViolationError.
func NewInvariantViolation(invariant, detail string) error {
	return &InvariantViolationError{Invariant: invariant, Detail: detail}
}
